// Package reports computes read-only financial summaries over committed
// sales, expenses and products. Every call recomputes from scratch over
// the requested date range; nothing here mutates an entity.
package reports

import (
	"encoding/json"
	"time"

	"go-backoffice/internal/apperr"
	"go-backoffice/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Products with this quantity or less count as low stock on the dashboard.
const LowStockThreshold = 10

type Engine struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// --- Dashboard ---

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type DashboardSummary struct {
	TotalSales        decimal.Decimal `json:"total_sales"`
	TotalTransactions int64           `json:"total_transactions"`
	TotalExpenses     decimal.Decimal `json:"total_expenses"`
	GrossProfit       decimal.Decimal `json:"gross_profit"`
	NetProfit         decimal.Decimal `json:"net_profit"`
	ProfitMargin      decimal.Decimal `json:"profit_margin"`
}

type ProductStats struct {
	TotalActive   int64 `json:"total_active"`
	LowStockCount int64 `json:"low_stock_count"`
}

type TopProduct struct {
	ProductID     uint            `gorm:"column:id" json:"id"`
	Name          string          `json:"name"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

type TrendPoint struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
	Count int64           `json:"count"`
}

type Dashboard struct {
	Period      string           `json:"period"`
	DateRange   DateRange        `json:"date_range"`
	Summary     DashboardSummary `json:"summary"`
	Products    ProductStats     `json:"products"`
	TopProducts []TopProduct     `json:"top_products"`
	SalesTrend  []TrendPoint     `json:"sales_trend"`
	RecentSales []models.Sale    `json:"recent_sales"`
}

// Dashboard aggregates the period from its boundary start until now.
// period is one of today, week, month, year (anything else means today).
func (e *Engine) Dashboard(period string) (*Dashboard, error) {
	now := time.Now()
	start := periodStart(period, now)

	totalSales, err := e.sumSales(start, now)
	if err != nil {
		return nil, err
	}

	var totalTransactions int64
	if err := e.salesBetween(start, now).Count(&totalTransactions).Error; err != nil {
		return nil, err
	}

	totalExpenses, err := e.sumExpenses(start, now)
	if err != nil {
		return nil, err
	}

	grossProfit, err := e.grossProfit(start, now)
	if err != nil {
		return nil, err
	}
	netProfit := grossProfit.Sub(totalExpenses)

	var lowStock, totalActive int64
	if err := e.db.Model(&models.Product{}).
		Where("stock_quantity <= ? AND is_active = ?", LowStockThreshold, true).
		Count(&lowStock).Error; err != nil {
		return nil, err
	}
	if err := e.db.Model(&models.Product{}).
		Where("is_active = ?", true).
		Count(&totalActive).Error; err != nil {
		return nil, err
	}

	topProducts := []TopProduct{}
	err = e.db.Table("sale_items").
		Select("products.id AS id, products.name AS name, SUM(sale_items.quantity) AS total_quantity, SUM(sale_items.subtotal) AS total_revenue").
		Joins("JOIN products ON sale_items.product_id = products.id").
		Joins("JOIN sales ON sale_items.sale_id = sales.id").
		Where("sales.sale_date BETWEEN ? AND ? AND sales.deleted_at IS NULL", start, now).
		Group("products.id, products.name").
		Order("total_quantity DESC").
		Limit(5).
		Scan(&topProducts).Error
	if err != nil {
		return nil, err
	}

	salesTrend := []TrendPoint{}
	err = e.salesBetween(start, now).
		Select("DATE(sale_date) AS date, SUM(total_amount) AS total, COUNT(*) AS count").
		Group("DATE(sale_date)").
		Order("date").
		Scan(&salesTrend).Error
	if err != nil {
		return nil, err
	}

	recentSales := []models.Sale{}
	err = e.db.Preload("User").Preload("Items.Product").
		Order("sale_date DESC").
		Limit(5).
		Find(&recentSales).Error
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Period: period,
		DateRange: DateRange{
			Start: start.Format("2006-01-02"),
			End:   now.Format("2006-01-02"),
		},
		Summary: DashboardSummary{
			TotalSales:        totalSales.Round(2),
			TotalTransactions: totalTransactions,
			TotalExpenses:     totalExpenses.Round(2),
			GrossProfit:       grossProfit.Round(2),
			NetProfit:         netProfit.Round(2),
			ProfitMargin:      margin(netProfit, totalSales),
		},
		Products: ProductStats{
			TotalActive:   totalActive,
			LowStockCount: lowStock,
		},
		TopProducts: topProducts,
		SalesTrend:  salesTrend,
		RecentSales: recentSales,
	}, nil
}

// --- Profit & loss ---

type Period struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type Revenue struct {
	TotalSales           decimal.Decimal `json:"total_sales"`
	NumberOfTransactions int64           `json:"number_of_transactions"`
}

type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

type OperatingExpenses struct {
	Breakdown []CategoryTotal `json:"breakdown"`
	Total     decimal.Decimal `json:"total"`
}

type ProfitLossStatement struct {
	Period            Period            `json:"period"`
	Revenue           Revenue           `json:"revenue"`
	CostOfGoodsSold   decimal.Decimal   `json:"cost_of_goods_sold"`
	GrossProfit       decimal.Decimal   `json:"gross_profit"`
	GrossProfitMargin decimal.Decimal   `json:"gross_profit_margin"`
	OperatingExpenses OperatingExpenses `json:"operating_expenses"`
	NetProfit         decimal.Decimal   `json:"net_profit"`
	NetProfitMargin   decimal.Decimal   `json:"net_profit_margin"`
}

// ProfitLoss computes the P&L statement for [start, end] inclusive.
func (e *Engine) ProfitLoss(start, end time.Time) (*ProfitLossStatement, error) {
	start, end, err := dayBounds(start, end)
	if err != nil {
		return nil, err
	}

	revenue, err := e.sumSales(start, end)
	if err != nil {
		return nil, err
	}

	var salesCount int64
	if err := e.salesBetween(start, end).Count(&salesCount).Error; err != nil {
		return nil, err
	}

	cogs, err := e.costOfGoodsSold(start, end)
	if err != nil {
		return nil, err
	}
	grossProfit := revenue.Sub(cogs)

	breakdown := []CategoryTotal{}
	err = e.db.Model(&models.Expense{}).
		Where("expense_date BETWEEN ? AND ?", start, end).
		Select("category, SUM(amount) AS total").
		Group("category").
		Scan(&breakdown).Error
	if err != nil {
		return nil, err
	}

	totalExpenses := decimal.Zero
	for _, c := range breakdown {
		totalExpenses = totalExpenses.Add(c.Total)
	}
	netProfit := grossProfit.Sub(totalExpenses)

	return &ProfitLossStatement{
		Period: Period{
			StartDate: start.Format("2006-01-02"),
			EndDate:   end.Format("2006-01-02"),
		},
		Revenue: Revenue{
			TotalSales:           revenue.Round(2),
			NumberOfTransactions: salesCount,
		},
		CostOfGoodsSold:   cogs.Round(2),
		GrossProfit:       grossProfit.Round(2),
		GrossProfitMargin: margin(grossProfit, revenue),
		OperatingExpenses: OperatingExpenses{
			Breakdown: breakdown,
			Total:     totalExpenses.Round(2),
		},
		NetProfit:       netProfit.Round(2),
		NetProfitMargin: margin(netProfit, revenue),
	}, nil
}

// --- Sales / expense reports ---

type MethodBreakdown struct {
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

type SalesSummary struct {
	TotalSales         decimal.Decimal            `json:"total_sales"`
	TotalTransactions  int64                      `json:"total_transactions"`
	AverageTransaction decimal.Decimal            `json:"average_transaction"`
	PaymentMethods     map[string]MethodBreakdown `json:"payment_methods"`
}

type SalesReport struct {
	Period  Period        `json:"period"`
	Summary SalesSummary  `json:"summary"`
	Sales   []models.Sale `json:"sales"`
}

// SalesReport returns the raw sales in range plus totals, average and a
// payment-method breakdown.
func (e *Engine) SalesReport(start, end time.Time) (*SalesReport, error) {
	start, end, err := dayBounds(start, end)
	if err != nil {
		return nil, err
	}

	sales := []models.Sale{}
	err = e.db.Preload("User").Preload("Items.Product").
		Where("sale_date BETWEEN ? AND ?", start, end).
		Find(&sales).Error
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	methods := map[string]MethodBreakdown{}
	for _, sale := range sales {
		total = total.Add(sale.TotalAmount)
		m := methods[sale.PaymentMethod]
		m.Count++
		m.Total = m.Total.Add(sale.TotalAmount)
		methods[sale.PaymentMethod] = m
	}
	for method, m := range methods {
		m.Total = m.Total.Round(2)
		methods[method] = m
	}

	count := int64(len(sales))
	average := decimal.Zero
	if count > 0 {
		average = total.Div(decimal.NewFromInt(count)).Round(2)
	}

	return &SalesReport{
		Period: Period{
			StartDate: start.Format("2006-01-02"),
			EndDate:   end.Format("2006-01-02"),
		},
		Summary: SalesSummary{
			TotalSales:         total.Round(2),
			TotalTransactions:  count,
			AverageTransaction: average,
			PaymentMethods:     methods,
		},
		Sales: sales,
	}, nil
}

type CategoryBreakdown struct {
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

type ExpenseSummary struct {
	TotalExpenses     decimal.Decimal              `json:"total_expenses"`
	TotalTransactions int64                        `json:"total_transactions"`
	ByCategory        map[string]CategoryBreakdown `json:"by_category"`
}

type ExpenseReport struct {
	Period   Period           `json:"period"`
	Summary  ExpenseSummary   `json:"summary"`
	Expenses []models.Expense `json:"expenses"`
}

// ExpenseReport returns the raw expenses in range plus a category breakdown.
func (e *Engine) ExpenseReport(start, end time.Time) (*ExpenseReport, error) {
	start, end, err := dayBounds(start, end)
	if err != nil {
		return nil, err
	}

	expenses := []models.Expense{}
	err = e.db.Preload("User").
		Where("expense_date BETWEEN ? AND ?", start, end).
		Find(&expenses).Error
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	byCategory := map[string]CategoryBreakdown{}
	for _, expense := range expenses {
		total = total.Add(expense.Amount)
		c := byCategory[expense.Category]
		c.Count++
		c.Total = c.Total.Add(expense.Amount)
		byCategory[expense.Category] = c
	}
	for category, c := range byCategory {
		c.Total = c.Total.Round(2)
		byCategory[category] = c
	}

	return &ExpenseReport{
		Period: Period{
			StartDate: start.Format("2006-01-02"),
			EndDate:   end.Format("2006-01-02"),
		},
		Summary: ExpenseSummary{
			TotalExpenses:     total.Round(2),
			TotalTransactions: int64(len(expenses)),
			ByCategory:        byCategory,
		},
		Expenses: expenses,
	}, nil
}

// --- Persisted snapshots ---

type SnapshotSales struct {
	Total   decimal.Decimal `json:"total"`
	Count   int64           `json:"count"`
	Average decimal.Decimal `json:"average"`
}

type SnapshotExpenses struct {
	Total decimal.Decimal `json:"total"`
	Count int64           `json:"count"`
}

type SnapshotProfit struct {
	Gross  decimal.Decimal `json:"gross"`
	Net    decimal.Decimal `json:"net"`
	Margin decimal.Decimal `json:"margin"`
}

// Snapshot is the report payload persisted verbatim in Report.Data.
type Snapshot struct {
	Sales    SnapshotSales    `json:"sales"`
	Expenses SnapshotExpenses `json:"expenses"`
	Profit   SnapshotProfit   `json:"profit"`
}

// Generate computes the snapshot for the range and persists it as an
// immutable Report row attributed to userID.
func (e *Engine) Generate(userID uint, reportType string, start, end time.Time) (*models.Report, error) {
	start, end, err := dayBounds(start, end)
	if err != nil {
		return nil, err
	}

	totalSales, err := e.sumSales(start, end)
	if err != nil {
		return nil, err
	}
	var salesCount int64
	if err := e.salesBetween(start, end).Count(&salesCount).Error; err != nil {
		return nil, err
	}
	average := decimal.Zero
	if salesCount > 0 {
		average = totalSales.Div(decimal.NewFromInt(salesCount)).Round(2)
	}

	totalExpenses, err := e.sumExpenses(start, end)
	if err != nil {
		return nil, err
	}
	var expenseCount int64
	if err := e.db.Model(&models.Expense{}).
		Where("expense_date BETWEEN ? AND ?", start, end).
		Count(&expenseCount).Error; err != nil {
		return nil, err
	}

	grossProfit, err := e.grossProfit(start, end)
	if err != nil {
		return nil, err
	}
	netProfit := grossProfit.Sub(totalExpenses)

	snapshot := Snapshot{
		Sales: SnapshotSales{
			Total:   totalSales.Round(2),
			Count:   salesCount,
			Average: average,
		},
		Expenses: SnapshotExpenses{
			Total: totalExpenses.Round(2),
			Count: expenseCount,
		},
		Profit: SnapshotProfit{
			Gross:  grossProfit.Round(2),
			Net:    netProfit.Round(2),
			Margin: margin(netProfit, totalSales),
		},
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}

	report := models.Report{
		UserID:     userID,
		ReportType: reportType,
		StartDate:  start,
		EndDate:    end,
		Data:       data,
	}
	if err := e.db.Create(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// --- Internals ---

func (e *Engine) salesBetween(start, end time.Time) *gorm.DB {
	return e.db.Model(&models.Sale{}).Where("sale_date BETWEEN ? AND ?", start, end)
}

type sumRow struct {
	Total decimal.Decimal
}

func (e *Engine) sumSales(start, end time.Time) (decimal.Decimal, error) {
	var row sumRow
	err := e.salesBetween(start, end).
		Select("COALESCE(SUM(total_amount), 0) AS total").
		Scan(&row).Error
	return row.Total, err
}

func (e *Engine) sumExpenses(start, end time.Time) (decimal.Decimal, error) {
	var row sumRow
	err := e.db.Model(&models.Expense{}).
		Where("expense_date BETWEEN ? AND ?", start, end).
		Select("COALESCE(SUM(amount), 0) AS total").
		Scan(&row).Error
	return row.Total, err
}

// grossProfit needs the snapshotted item prices, so it loads the sales
// with items and sums in memory rather than joining live product prices.
func (e *Engine) grossProfit(start, end time.Time) (decimal.Decimal, error) {
	var sales []models.Sale
	err := e.db.Preload("Items").
		Where("sale_date BETWEEN ? AND ?", start, end).
		Find(&sales).Error
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, sale := range sales {
		total = total.Add(sale.TotalProfit())
	}
	return total, nil
}

// costOfGoodsSold sums cost_price * quantity over the items of every
// sale in range.
func (e *Engine) costOfGoodsSold(start, end time.Time) (decimal.Decimal, error) {
	var sales []models.Sale
	err := e.db.Preload("Items").
		Where("sale_date BETWEEN ? AND ?", start, end).
		Find(&sales).Error
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, sale := range sales {
		total = total.Add(sale.TotalCost())
	}
	return total, nil
}

// margin returns part/whole as a percentage rounded to 2 decimal places,
// or 0 when the denominator is zero.
func margin(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).Round(2)
}

// periodStart resolves a dashboard period to its boundary start.
// Weeks start on Monday.
func periodStart(period string, now time.Time) time.Time {
	switch period {
	case "week":
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday
		}
		day := now.AddDate(0, 0, -(weekday - 1))
		return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, now.Location())
	case "month":
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case "year":
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	default: // today
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}
}

// dayBounds widens [start, end] to full days and rejects inverted ranges.
func dayBounds(start, end time.Time) (time.Time, time.Time, error) {
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location())
	if endDay.Before(start) {
		return start, end, apperr.ErrInvalidDateRange
	}
	// inclusive end of day
	return start, endDay.Add(24*time.Hour - time.Nanosecond), nil
}
