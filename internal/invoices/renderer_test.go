package invoices

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sportshoplabs/sportshop-backend/pkg/config"
	"github.com/sportshoplabs/sportshop-backend/pkg/db/models"
	"github.com/sportshoplabs/sportshop-backend/pkg/enums"
	pkgerrors "github.com/sportshoplabs/sportshop-backend/pkg/errors"
	"github.com/sportshoplabs/sportshop-backend/pkg/logger"
	"github.com/sportshoplabs/sportshop-backend/pkg/money"
)

const testFontPath = "../../assets/fonts/DejaVuSans.ttf"

func testRenderer(t *testing.T, out io.Writer) *Renderer {
	t.Helper()

	if _, err := os.Stat(testFontPath); err != nil {
		t.Skipf("skipping: invoice font not available at %s", testFontPath)
	}

	if out == nil {
		out = io.Discard
	}
	logg := logger.New(logger.Options{ServiceName: "invoices-test", Output: out})

	r, err := NewRenderer(config.InvoiceConfig{FontPath: testFontPath, Currency: "руб."}, logg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return r
}

func sampleOrder() models.Order {
	discount := models.Discount{ID: uuid.New(), Name: "Promo", Percent: 10}
	return models.Order{
		ID:              uuid.New(),
		User:            models.User{FirstName: "Иван", LastName: "Петров", Email: "ivan@example.com"},
		Status:          enums.OrderStatusPending,
		TotalPrice:      money.MustFromString("2000.00"),
		DiscountedTotal: money.MustFromString("1800.00"),
		CreatedAt:       time.Date(2024, 6, 1, 14, 30, 0, 0, time.UTC),
		Items: []models.OrderItem{
			{
				Product:    models.Product{Name: "Кроссовки"},
				Quantity:   2,
				Price:      money.MustFromString("1000.00"),
				DiscountID: &discount.ID,
				Discount:   &discount,
			},
		},
	}
}

func TestRenderProducesPDF(t *testing.T) {
	r := testRenderer(t, nil)

	out, err := r.Render(context.Background(), []models.Order{sampleOrder()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) == 0 || !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("expected a PDF document, got %d bytes", len(out))
	}
}

func TestRenderWarnsAboutUndiscountedRowSums(t *testing.T) {
	var logs bytes.Buffer
	r := testRenderer(t, &logs)

	if _, err := r.Render(context.Background(), []models.Order{sampleOrder()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Contains(logs.Bytes(), []byte("undiscounted prices")) {
		t.Fatal("expected a warning about the legacy row-sum behavior")
	}
}

func TestRenderRejectsEmptyInput(t *testing.T) {
	r := testRenderer(t, nil)

	_, err := r.Render(context.Background(), nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRenderConcatenatesMultipleOrders(t *testing.T) {
	r := testRenderer(t, nil)

	orders := make([]models.Order, 0, 12)
	for i := 0; i < 12; i++ {
		orders = append(orders, sampleOrder())
	}

	out, err := r.Render(context.Background(), orders)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("expected a non-empty document")
	}
}
