package reports

import (
	"encoding/json"
	"testing"
	"time"

	"go-backoffice/internal/apperr"
	"go-backoffice/internal/database"
	"go-backoffice/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedUser(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	user := models.User{Username: "owner", PasswordHash: "x", Role: "admin"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// seedSale inserts a committed sale with one item per (qty, unit, cost) triple.
func seedSale(t *testing.T, db *gorm.DB, user models.User, number string, date time.Time, method string, items [][3]string) models.Sale {
	t.Helper()

	product := models.Product{
		Name: "P-" + number, SKU: "SKU-" + number,
		CostPrice: dec("1.00"), SellingPrice: dec("2.00"),
		StockQuantity: 1000, Unit: "pcs", IsActive: true,
	}
	require.NoError(t, db.Create(&product).Error)

	subtotal := decimal.Zero
	var saleItems []models.SaleItem
	for _, it := range items {
		qty := dec(it[0])
		unit := dec(it[1])
		cost := dec(it[2])
		lineTotal := unit.Mul(qty)
		subtotal = subtotal.Add(lineTotal)
		saleItems = append(saleItems, models.SaleItem{
			ProductID: product.ID,
			Quantity:  int(qty.IntPart()),
			UnitPrice: unit,
			CostPrice: cost,
			Subtotal:  lineTotal,
		})
	}

	sale := models.Sale{
		SaleNumber:    number,
		UserID:        user.ID,
		SaleDate:      date,
		Subtotal:      subtotal,
		TotalAmount:   subtotal,
		PaymentMethod: method,
		PaymentStatus: "paid",
		Items:         saleItems,
	}
	require.NoError(t, db.Create(&sale).Error)
	return sale
}

func seedExpense(t *testing.T, db *gorm.DB, user models.User, category, amount string, date time.Time) {
	t.Helper()
	expense := models.Expense{
		UserID:        user.ID,
		Category:      category,
		Description:   category + " bill",
		Amount:        dec(amount),
		ExpenseDate:   date,
		PaymentMethod: "cash",
	}
	require.NoError(t, db.Create(&expense).Error)
}

func TestDashboardEmpty(t *testing.T) {
	db := newTestDB(t)
	engine := New(db)

	dashboard, err := engine.Dashboard("today")
	require.NoError(t, err)

	assert.True(t, dashboard.Summary.TotalSales.IsZero())
	assert.Zero(t, dashboard.Summary.TotalTransactions)
	assert.True(t, dashboard.Summary.ProfitMargin.IsZero())
	assert.Empty(t, dashboard.TopProducts)
	assert.Empty(t, dashboard.SalesTrend)
	assert.Empty(t, dashboard.RecentSales)
}

func TestDashboardAggregates(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	now := time.Now()

	// Two sales today: 3 * 10 (cost 6) and 2 * 5 (cost 3)
	seedSale(t, db, user, "S-1", now, "cash", [][3]string{{"3", "10.00", "6.00"}})
	seedSale(t, db, user, "S-2", now, "card", [][3]string{{"2", "5.00", "3.00"}})
	seedExpense(t, db, user, "rent", "6.00", now)

	// Low-stock and inactive products
	require.NoError(t, db.Create(&models.Product{
		Name: "Low", SKU: "LOW-1", StockQuantity: 5, Unit: "pcs", IsActive: true,
	}).Error)
	require.NoError(t, db.Create(&models.Product{
		Name: "Inactive", SKU: "OFF-1", StockQuantity: 2, Unit: "pcs", IsActive: false,
	}).Error)

	engine := New(db)
	dashboard, err := engine.Dashboard("today")
	require.NoError(t, err)

	assert.True(t, dashboard.Summary.TotalSales.Equal(dec("40")), "total sales = %s", dashboard.Summary.TotalSales)
	assert.EqualValues(t, 2, dashboard.Summary.TotalTransactions)
	assert.True(t, dashboard.Summary.TotalExpenses.Equal(dec("6")))
	// gross = (10-6)*3 + (5-3)*2 = 16, net = 16 - 6 = 10
	assert.True(t, dashboard.Summary.GrossProfit.Equal(dec("16")))
	assert.True(t, dashboard.Summary.NetProfit.Equal(dec("10")))
	// margin = 10/40*100 = 25
	assert.True(t, dashboard.Summary.ProfitMargin.Equal(dec("25")), "margin = %s", dashboard.Summary.ProfitMargin)

	assert.EqualValues(t, 1, dashboard.Products.LowStockCount)
	assert.EqualValues(t, 3, dashboard.Products.TotalActive) // two seeded sale products + "Low"

	require.Len(t, dashboard.TopProducts, 2)
	// Ordered by quantity sold, descending
	assert.EqualValues(t, 3, dashboard.TopProducts[0].TotalQuantity)
	assert.EqualValues(t, 2, dashboard.TopProducts[1].TotalQuantity)

	require.Len(t, dashboard.SalesTrend, 1)
	assert.EqualValues(t, 2, dashboard.SalesTrend[0].Count)
	assert.True(t, dashboard.SalesTrend[0].Total.Equal(dec("40")))

	require.Len(t, dashboard.RecentSales, 2)
}

func TestDashboardExcludesDeletedSales(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	now := time.Now()

	sale := seedSale(t, db, user, "S-1", now, "cash", [][3]string{{"1", "10.00", "6.00"}})
	require.NoError(t, db.Delete(&sale).Error)

	engine := New(db)
	dashboard, err := engine.Dashboard("today")
	require.NoError(t, err)

	assert.True(t, dashboard.Summary.TotalSales.IsZero())
	assert.Empty(t, dashboard.TopProducts)
}

func TestProfitLoss(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	date := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	seedSale(t, db, user, "S-1", date, "cash", [][3]string{{"3", "10.00", "6.00"}})
	seedSale(t, db, user, "S-2", date.AddDate(0, 0, 1), "card", [][3]string{{"2", "5.00", "3.00"}})
	seedExpense(t, db, user, "rent", "4.00", date)
	seedExpense(t, db, user, "utilities", "2.00", date)
	seedExpense(t, db, user, "rent", "1.00", date.AddDate(0, 0, 1))

	engine := New(db)
	statement, err := engine.ProfitLoss(
		time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	assert.True(t, statement.Revenue.TotalSales.Equal(dec("40")))
	assert.EqualValues(t, 2, statement.Revenue.NumberOfTransactions)
	// COGS = 6*3 + 3*2 = 24
	assert.True(t, statement.CostOfGoodsSold.Equal(dec("24")))
	assert.True(t, statement.GrossProfit.Equal(dec("16")))
	// gross margin = 16/40*100 = 40
	assert.True(t, statement.GrossProfitMargin.Equal(dec("40")))

	assert.True(t, statement.OperatingExpenses.Total.Equal(dec("7")))
	require.Len(t, statement.OperatingExpenses.Breakdown, 2)
	byCategory := map[string]decimal.Decimal{}
	for _, b := range statement.OperatingExpenses.Breakdown {
		byCategory[b.Category] = b.Total
	}
	assert.True(t, byCategory["rent"].Equal(dec("5")))
	assert.True(t, byCategory["utilities"].Equal(dec("2")))

	// net = 16 - 7 = 9; margin = 9/40*100 = 22.5
	assert.True(t, statement.NetProfit.Equal(dec("9")))
	assert.True(t, statement.NetProfitMargin.Equal(dec("22.5")), "net margin = %s", statement.NetProfitMargin)
}

func TestProfitLossInvalidRange(t *testing.T) {
	db := newTestDB(t)
	engine := New(db)

	_, err := engine.ProfitLoss(
		time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	)
	require.ErrorIs(t, err, apperr.ErrInvalidDateRange)
}

func TestProfitLossZeroRevenue(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	seedExpense(t, db, user, "rent", "5.00", date)

	engine := New(db)
	statement, err := engine.ProfitLoss(date, date)
	require.NoError(t, err)

	assert.True(t, statement.Revenue.TotalSales.IsZero())
	// No division error: margins are exactly 0
	assert.True(t, statement.GrossProfitMargin.IsZero())
	assert.True(t, statement.NetProfitMargin.IsZero())
	assert.True(t, statement.NetProfit.Equal(dec("-5")))
}

func TestSalesReport(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	date := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)

	seedSale(t, db, user, "S-1", date, "cash", [][3]string{{"1", "30.00", "20.00"}})
	seedSale(t, db, user, "S-2", date, "cash", [][3]string{{"1", "10.00", "5.00"}})
	seedSale(t, db, user, "S-3", date, "transfer", [][3]string{{"1", "20.00", "10.00"}})

	engine := New(db)
	report, err := engine.SalesReport(date, date)
	require.NoError(t, err)

	assert.True(t, report.Summary.TotalSales.Equal(dec("60")))
	assert.EqualValues(t, 3, report.Summary.TotalTransactions)
	assert.True(t, report.Summary.AverageTransaction.Equal(dec("20")))

	cash := report.Summary.PaymentMethods["cash"]
	assert.EqualValues(t, 2, cash.Count)
	assert.True(t, cash.Total.Equal(dec("40")))
	transfer := report.Summary.PaymentMethods["transfer"]
	assert.EqualValues(t, 1, transfer.Count)
	assert.True(t, transfer.Total.Equal(dec("20")))

	assert.Len(t, report.Sales, 3)
}

func TestExpenseReport(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	date := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	seedExpense(t, db, user, "rent", "100.00", date)
	seedExpense(t, db, user, "rent", "50.00", date)
	seedExpense(t, db, user, "supplies", "25.50", date)

	engine := New(db)
	report, err := engine.ExpenseReport(date, date)
	require.NoError(t, err)

	assert.True(t, report.Summary.TotalExpenses.Equal(dec("175.50")))
	assert.EqualValues(t, 3, report.Summary.TotalTransactions)

	rent := report.Summary.ByCategory["rent"]
	assert.EqualValues(t, 2, rent.Count)
	assert.True(t, rent.Total.Equal(dec("150")))
	supplies := report.Summary.ByCategory["supplies"]
	assert.EqualValues(t, 1, supplies.Count)
	assert.True(t, supplies.Total.Equal(dec("25.50")))

	assert.Len(t, report.Expenses, 3)
}

func TestGenerateReportSnapshot(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	date := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

	seedSale(t, db, user, "S-1", date, "cash", [][3]string{{"3", "10.00", "6.00"}})
	seedExpense(t, db, user, "rent", "2.00", date)

	engine := New(db)
	report, err := engine.Generate(user.ID, "custom", date, date)
	require.NoError(t, err)
	assert.Equal(t, "custom", report.ReportType)
	assert.Equal(t, user.ID, report.UserID)

	var snapshot Snapshot
	require.NoError(t, json.Unmarshal(report.Data, &snapshot))
	assert.True(t, snapshot.Sales.Total.Equal(dec("30")))
	assert.EqualValues(t, 1, snapshot.Sales.Count)
	assert.True(t, snapshot.Sales.Average.Equal(dec("30")))
	assert.True(t, snapshot.Expenses.Total.Equal(dec("2")))
	assert.EqualValues(t, 1, snapshot.Expenses.Count)
	// gross = (10-6)*3 = 12, net = 10, margin = 10/30*100 = 33.33
	assert.True(t, snapshot.Profit.Gross.Equal(dec("12")))
	assert.True(t, snapshot.Profit.Net.Equal(dec("10")))
	assert.True(t, snapshot.Profit.Margin.Equal(dec("33.33")), "margin = %s", snapshot.Profit.Margin)

	// Immutable: later sales do not touch the stored snapshot
	seedSale(t, db, user, "S-2", date, "cash", [][3]string{{"1", "99.00", "1.00"}})
	var stored models.Report
	require.NoError(t, db.First(&stored, report.ID).Error)
	var again Snapshot
	require.NoError(t, json.Unmarshal(stored.Data, &again))
	assert.True(t, again.Sales.Total.Equal(dec("30")))
}

func TestGenerateReportInvalidRange(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)

	engine := New(db)
	_, err := engine.Generate(user.ID, "custom",
		time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	)
	require.ErrorIs(t, err, apperr.ErrInvalidDateRange)
}

func TestPeriodStart(t *testing.T) {
	// Wednesday 2025-06-18 15:30 local
	now := time.Date(2025, 6, 18, 15, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC), periodStart("today", now))
	assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), periodStart("week", now))
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), periodStart("month", now))
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), periodStart("year", now))

	// Sunday belongs to the week that started the previous Monday
	sunday := time.Date(2025, 6, 22, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), periodStart("week", sunday))
}

func TestMargin(t *testing.T) {
	assert.True(t, margin(dec("10"), dec("40")).Equal(dec("25")))
	assert.True(t, margin(dec("1"), dec("3")).Equal(dec("33.33")))
	assert.True(t, margin(dec("10"), decimal.Zero).IsZero())
}
