package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// User - The person recording sales, expenses and reports
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50" json:"username"`
	PasswordHash string    `json:"-"`    // Never return this in JSON
	Role         string    `json:"role"` // 'admin', 'manager', 'cashier'
	CreatedAt    time.Time `json:"created_at"`
}

// Product - The Inventory
type Product struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"size:255" json:"name"`
	SKU           string          `gorm:"uniqueIndex;size:100" json:"sku"`
	Description   string          `json:"description"`
	CostPrice     decimal.Decimal `gorm:"type:decimal(12,2)" json:"cost_price"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(12,2)" json:"selling_price"`
	StockQuantity int             `json:"stock_quantity"`
	Unit          string          `gorm:"size:50" json:"unit"` // pcs, kg, box...
	Category      string          `gorm:"size:100;index" json:"category"`
	IsActive      bool            `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

// ProfitMargin returns the markup over cost as a percentage.
// A zero cost price yields 0, not a division error.
func (p Product) ProfitMargin() decimal.Decimal {
	if p.CostPrice.IsZero() {
		return decimal.Zero
	}
	return p.SellingPrice.Sub(p.CostPrice).Div(p.CostPrice).Mul(decimal.NewFromInt(100))
}

// Customer - Optional customer records. Sales carry a free-text
// customer_name, not a foreign key, so deleting a customer never
// touches past sales.
type Customer struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"size:255" json:"name"`
	Email        string         `gorm:"size:255" json:"email"`
	Phone        string         `gorm:"size:20" json:"phone"`
	Address      string         `json:"address"`
	CustomerType string         `gorm:"size:20;default:regular" json:"customer_type"` // 'regular', 'wholesale', 'retail'
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// Sale - The Transaction Header
type Sale struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	SaleNumber    string          `gorm:"uniqueIndex;size:50" json:"sale_number"`
	CustomerName  string          `gorm:"size:255" json:"customer_name"`
	UserID        uint            `json:"user_id"` // Who recorded it
	User          *User           `json:"user,omitempty"`
	SaleDate      time.Time       `gorm:"index" json:"sale_date"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2)" json:"subtotal"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2)" json:"total_amount"`
	PaymentMethod string          `gorm:"size:20;default:cash" json:"payment_method"` // 'cash', 'card', 'transfer', 'credit'
	PaymentStatus string          `gorm:"size:20;default:paid" json:"payment_status"` // 'paid', 'pending', 'partial'
	Notes         string          `json:"notes"`
	Items         []SaleItem      `gorm:"foreignKey:SaleID" json:"items"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TotalProfit sums (unit_price - cost_price) * quantity over the loaded items.
func (s Sale) TotalProfit() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.Profit())
	}
	return total
}

// TotalCost sums cost_price * quantity over the loaded items.
func (s Sale) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.TotalCost())
	}
	return total
}

// SaleItem - A line in a sale. unit_price and cost_price are snapshots
// taken at sale time and never change afterwards, so historical profit
// stays correct when product prices move.
type SaleItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	SaleID    uint            `gorm:"index" json:"sale_id"`
	ProductID uint            `json:"product_id"`
	Product   *Product        `json:"product,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2)" json:"unit_price"`
	CostPrice decimal.Decimal `gorm:"type:decimal(12,2)" json:"cost_price"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2)" json:"subtotal"`
}

// Profit returns (unit_price - cost_price) * quantity.
func (i SaleItem) Profit() decimal.Decimal {
	return i.UnitPrice.Sub(i.CostPrice).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// TotalCost returns cost_price * quantity.
func (i SaleItem) TotalCost() decimal.Decimal {
	return i.CostPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Expense - Money going out
type Expense struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        uint            `json:"user_id"`
	User          *User           `json:"user,omitempty"`
	Category      string          `gorm:"size:100;index" json:"category"` // rent, utilities, salaries, supplies...
	Description   string          `gorm:"size:255" json:"description"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount"`
	ExpenseDate   time.Time       `gorm:"index" json:"expense_date"`
	PaymentMethod string          `gorm:"size:20;default:cash" json:"payment_method"` // 'cash', 'card', 'transfer', 'check'
	ReceiptNumber string          `gorm:"size:100" json:"receipt_number"`
	Notes         string          `json:"notes"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

// Report - A persisted point-in-time snapshot of the aggregation
// engine's output. Once written, Data is never recomputed.
type Report struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UserID     uint            `json:"user_id"`
	User       *User           `json:"user,omitempty"`
	ReportType string          `gorm:"size:20;index" json:"report_type"` // 'daily', 'weekly', 'monthly', 'custom', 'profit_loss'
	StartDate  time.Time       `json:"start_date"`
	EndDate    time.Time       `json:"end_date"`
	Data       json.RawMessage `gorm:"type:json" json:"data"`
	FilePath   string          `gorm:"size:255" json:"file_path"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
