package reconcile

import (
	"testing"

	"github.com/erp/stockcore/internal/domain/stock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestProductUnion(t *testing.T) {
	productA := uuid.New()
	productB := uuid.New()

	t.Run("deduplicates across sets preserving first-seen order", func(t *testing.T) {
		first := []stock.LineItem{{ProductID: productA}, {ProductID: productB}}
		second := []stock.LineItem{{ProductID: productB}, {ProductID: productA}}

		ids := productUnion(first, second)

		assert.Equal(t, []uuid.UUID{productA, productB}, ids)
	})

	t.Run("empty input yields empty union", func(t *testing.T) {
		assert.Empty(t, productUnion())
		assert.Empty(t, productUnion(nil, nil))
	})
}

func TestResult_Dedupe(t *testing.T) {
	result := newResult()

	record, err := stock.NewStockRecord(uuid.New(), uuid.New())
	assert.NoError(t, err)

	result.addRecord(record)
	result.addRecord(record)
	assert.Len(t, result.Records, 1)

	productID := uuid.New()
	result.addSkipped(productID)
	result.addSkipped(productID)
	assert.Equal(t, []uuid.UUID{productID}, result.SkippedProducts)
	assert.True(t, result.HasSkippedProducts())
}
