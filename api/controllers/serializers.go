package controllers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sportshoplabs/sportshop-backend/pkg/db/models"
)

// Response DTOs shared by several controllers. Models carry only gorm tags,
// so every payload crosses through one of these.

type productResponse struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	InStock      bool            `json:"in_stock"`
	Category     *namedResponse  `json:"category,omitempty"`
	Brand        *namedResponse  `json:"brand,omitempty"`
	Size         string          `json:"size"`
	ExternalPage *string         `json:"external_page,omitempty"`
	Tags         []namedResponse `json:"tags,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

type namedResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func newProductResponse(p models.Product) productResponse {
	out := productResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		Stock:        p.Stock,
		InStock:      p.InStock(),
		Size:         string(p.Size),
		ExternalPage: p.ExternalPage,
		CreatedAt:    p.CreatedAt,
	}
	if p.Category.ID != uuid.Nil {
		out.Category = &namedResponse{ID: p.Category.ID, Name: p.Category.Name}
	}
	if p.Brand.ID != uuid.Nil {
		out.Brand = &namedResponse{ID: p.Brand.ID, Name: p.Brand.Name}
	}
	for _, tag := range p.Tags {
		out.Tags = append(out.Tags, namedResponse{ID: tag.ID, Name: tag.Name})
	}
	return out
}

func newProductResponses(list []models.Product) []productResponse {
	out := make([]productResponse, 0, len(list))
	for _, p := range list {
		out = append(out, newProductResponse(p))
	}
	return out
}

func newNamedResponsesFromCategories(list []models.Category) []namedResponse {
	out := make([]namedResponse, 0, len(list))
	for _, c := range list {
		out = append(out, namedResponse{ID: c.ID, Name: c.Name})
	}
	return out
}

func newNamedResponsesFromBrands(list []models.Brand) []namedResponse {
	out := make([]namedResponse, 0, len(list))
	for _, b := range list {
		out = append(out, namedResponse{ID: b.ID, Name: b.Name})
	}
	return out
}

func newNamedResponsesFromTags(list []models.Tag) []namedResponse {
	out := make([]namedResponse, 0, len(list))
	for _, t := range list {
		out = append(out, namedResponse{ID: t.ID, Name: t.Name})
	}
	return out
}

type discountResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Percent   int       `json:"percent"`
	Active    bool      `json:"active"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

func newDiscountResponse(d models.Discount) discountResponse {
	return discountResponse{
		ID:        d.ID,
		Name:      d.Name,
		Percent:   d.Percent,
		Active:    d.Active,
		StartDate: d.StartDate,
		EndDate:   d.EndDate,
	}
}

type userResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Phone       *string    `json:"phone,omitempty"`
	IsStaff     bool       `json:"is_staff"`
	Groups      []string   `json:"groups"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func newUserResponse(u models.User) userResponse {
	groups := make([]string, 0, len(u.Groups))
	for _, g := range u.Groups {
		groups = append(groups, g.Name)
	}
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Phone:       u.Phone,
		IsStaff:     u.IsStaff,
		Groups:      groups,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

type orderItemResponse struct {
	ID         uuid.UUID         `json:"id"`
	ProductID  uuid.UUID         `json:"product_id"`
	Product    *productResponse  `json:"product,omitempty"`
	Quantity   int               `json:"quantity"`
	Price      decimal.Decimal   `json:"price"`
	Discount   *discountResponse `json:"discount,omitempty"`
	DiscountID *uuid.UUID        `json:"discount_id,omitempty"`
}

type orderResponse struct {
	ID              uuid.UUID           `json:"id"`
	UserID          uuid.UUID           `json:"user_id"`
	Status          string              `json:"status"`
	StatusDisplay   string              `json:"status_display"`
	TotalPrice      decimal.Decimal     `json:"total_price"`
	DiscountedTotal decimal.Decimal     `json:"discounted_total"`
	InvoiceFile     *string             `json:"invoice_file,omitempty"`
	Items           []orderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func newOrderResponse(order models.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		row := orderItemResponse{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			Price:      item.Price,
			DiscountID: item.DiscountID,
		}
		if item.Product.ID != uuid.Nil {
			product := newProductResponse(item.Product)
			row.Product = &product
		}
		if item.Discount != nil {
			discount := newDiscountResponse(*item.Discount)
			row.Discount = &discount
		}
		items = append(items, row)
	}

	return orderResponse{
		ID:              order.ID,
		UserID:          order.UserID,
		Status:          string(order.Status),
		StatusDisplay:   order.Status.Display(),
		TotalPrice:      order.TotalPrice,
		DiscountedTotal: order.DiscountedTotal,
		InvoiceFile:     order.InvoiceFile,
		Items:           items,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

func newOrderResponses(list []models.Order) []orderResponse {
	out := make([]orderResponse, 0, len(list))
	for _, order := range list {
		out = append(out, newOrderResponse(order))
	}
	return out
}

type paymentResponse struct {
	ID            uuid.UUID `json:"id"`
	OrderID       uuid.UUID `json:"order_id"`
	Method        string    `json:"method"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transaction_id"`
	CreatedAt     time.Time `json:"created_at"`
}

func newPaymentResponse(p models.Payment) paymentResponse {
	return paymentResponse{
		ID:            p.ID,
		OrderID:       p.OrderID,
		Method:        string(p.Method),
		Status:        string(p.Status),
		TransactionID: p.TransactionID,
		CreatedAt:     p.CreatedAt,
	}
}

type reviewResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func newReviewResponse(r models.Review) reviewResponse {
	out := reviewResponse{
		ID:        r.ID,
		ProductID: r.ProductID,
		UserID:    r.UserID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
	if r.User.ID != uuid.Nil {
		name := r.User.FirstName
		if r.User.LastName != "" {
			if name != "" {
				name += " "
			}
			name += r.User.LastName
		}
		if name == "" {
			name = r.User.Email
		}
		out.UserName = name
	}
	return out
}
