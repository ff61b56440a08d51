package customers

import "github.com/eldorado-books/bookstore-backend/pkg/db/models"

// ListFilters narrows customer listings. Search matches name or phone.
type ListFilters struct {
	Search string
}

// CustomerList is one page of customers plus the cursor for the next page.
type CustomerList struct {
	Customers  []models.Customer `json:"customers"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// CreateCustomerInput carries the fields required to register a customer.
type CreateCustomerInput struct {
	FullName string
	Phone    string
	Email    *string
	Address  *string
}

// UpdateCustomerInput carries a partial update. Nil fields are left untouched.
type UpdateCustomerInput struct {
	FullName *string
	Phone    *string
	Email    *string
	Address  *string
}
