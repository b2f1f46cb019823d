package services

import (
	"context"
	"time"

	"fintrack/internal/engine"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// AssetInput carries the editable fields of an asset.
type AssetInput struct {
	Code         string           `json:"code" binding:"required,max=64"`
	Type         engine.AssetType `json:"account_type" binding:"required,asset_type"`
	Units        float64          `json:"units" binding:"gte=0"`
	Cost         float64          `json:"cost" binding:"gte=0"`
	CurrentValue float64          `json:"current_value" binding:"gte=0"`
	Currency     engine.Currency  `json:"currency" binding:"omitempty,currency"`
}

// AccountServicer defines the contract for asset accounts and their holdings.
type AccountServicer interface {
	CreateAccount(userID, name, description string, assets []AssetInput) (*models.AssetAccount, error)
	GetUserAccounts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.AssetAccount], error)
	GetAllAccounts(userID string) ([]models.AssetAccount, error)
	GetAccountByID(userID, accountID string) (*models.AssetAccount, error)
	UpdateAccount(userID, accountID, name, description string) (*models.AssetAccount, error)
	DeleteAccount(userID, accountID string) error
	AddAsset(userID, accountID string, in AssetInput) (*models.Asset, error)
	UpdateAsset(userID, accountID, assetID string, in AssetInput) (*models.Asset, error)
	DeleteAsset(userID, accountID, assetID string) error
}

// RecordInput carries the editable fields of a cashflow record.
type RecordInput struct {
	Date          string              `json:"date" binding:"required,date_key"`
	Type          engine.CashflowType `json:"type" binding:"required,cashflow_type"`
	Category      string              `json:"category" binding:"required,max=64"`
	Amount        float64             `json:"amount" binding:"gte=0"`
	Currency      engine.Currency     `json:"currency" binding:"omitempty,currency"`
	Description   string              `json:"description" binding:"max=255"`
	AccountID     string              `json:"account_id" binding:"omitempty,uuid"`
	IsRecurring   bool                `json:"is_recurring"`
	RecurrenceDay int                 `json:"recurrence_day" binding:"omitempty,min=1,max=31"`
}

// CashflowFilter holds optional filter parameters for listing records.
type CashflowFilter struct {
	Month     string
	Type      *engine.CashflowType
	Category  string
	AccountID string
	Search    string
}

// CashflowServicer defines the contract for income and expense records.
type CashflowServicer interface {
	CreateRecord(userID string, in RecordInput) (*models.CashflowRecord, error)
	GetRecordByID(userID, recordID string) (*models.CashflowRecord, error)
	UpdateRecord(userID, recordID string, in RecordInput) (*models.CashflowRecord, error)
	DeleteRecord(userID, recordID string) error
	ListRecords(userID string, page pagination.PageRequest, filter CashflowFilter) (*pagination.PageResponse[models.CashflowRecord], error)
	GetAllRecords(userID string) ([]models.CashflowRecord, error)
	GetMonthlySummary(userID, month string) (*engine.MonthSummary, error)
	MaterializeRecurring(userID string, today time.Time) (int, error)
	MaterializeAllRecurring(today time.Time) (int, error)
}

// BudgetServicer defines the contract for monthly category budgets.
type BudgetServicer interface {
	SetBudget(userID, month, category string, amount float64) (*models.Budget, error)
	GetMonthBudgets(userID, month string) ([]models.Budget, error)
	DeleteBudget(userID, budgetID string) error
	CopyPreviousMonth(userID, month string) (int, error)
	GetBudgetReport(userID, month string) ([]engine.BudgetLine, error)
}

// GoalInput carries the editable fields of a goal.
type GoalInput struct {
	Name             string   `json:"name" binding:"required,max=100"`
	TargetAmount     float64  `json:"target_amount" binding:"gte=0"`
	TargetDate       string   `json:"target_date" binding:"omitempty,date_key"`
	CurrentAmount    float64  `json:"current_amount" binding:"gte=0"`
	LinkedAccountIDs []string `json:"linked_account_ids" binding:"omitempty,dive,uuid"`
}

// GoalServicer defines the contract for savings goals.
type GoalServicer interface {
	CreateGoal(userID string, in GoalInput) (*models.Goal, error)
	GetUserGoals(userID string) ([]models.Goal, error)
	GetGoalByID(userID, goalID string) (*models.Goal, error)
	UpdateGoal(userID, goalID string, in GoalInput) (*models.Goal, error)
	DeleteGoal(userID, goalID string) error
}

// RateInfo describes where the rate in use comes from.
type RateInfo struct {
	Effective  float64        `json:"effective"`
	Source     string         `json:"source"`
	ManualRate *float64       `json:"manual_rate"`
	Fetched    *models.FXRate `json:"fetched,omitempty"`
	Default    float64        `json:"default"`
}

// Rate sources reported by RateInfo.
const (
	RateSourceManual  = "manual"
	RateSourceFetched = "fetched"
	RateSourceDefault = "default"
)

// SettingsServicer defines the contract for user preferences and FX rates.
type SettingsServicer interface {
	GetSettings(userID string) (*models.Settings, error)
	SetManualRate(userID string, rate *float64) (*models.Settings, error)
	SetCustomCategories(userID string, typ engine.CashflowType, categories []string) (*models.Settings, error)
	MarkRecurringChecked(userID, date string) error
	RecordFetchedRate(rate float64, source string, at time.Time) (*models.FXRate, error)
	LatestFetchedRate() (*models.FXRate, error)
	GetRateInfo(userID string) (*RateInfo, error)
	EngineSettings(userID string) (engine.Settings, error)
}

// FXServicer pulls the USD/TWD rate from an external provider.
type FXServicer interface {
	Refresh(ctx context.Context) (*models.FXRate, error)
}

// ImportResult counts what a backup import wrote.
type ImportResult struct {
	Accounts int `json:"accounts"`
	Assets   int `json:"assets"`
	Records  int `json:"records"`
	Budgets  int `json:"budgets"`
	Goals    int `json:"goals"`
}

// BackupServicer loads and replaces a user's complete data set.
type BackupServicer interface {
	Export(userID string) (*engine.Snapshot, error)
	Import(userID string, snap engine.Snapshot) (*ImportResult, error)
}

// SummaryView is the asset summary together with the rate used to value it.
type SummaryView struct {
	Rate    float64        `json:"usd_twd_rate"`
	Summary engine.Summary `json:"summary"`
}

// DashboardServicer runs the aggregation engine over a user's stored data.
type DashboardServicer interface {
	GetDashboard(userID string, now time.Time) (*engine.Dashboard, error)
	GetSummary(userID string) (*SummaryView, error)
	GetHealth(userID string) (*engine.HealthScore, error)
	GetPNL(userID string, key engine.PNLSortKey, dir engine.SortDirection) (*engine.PNLReport, error)
	GetGoalProgress(userID string, now time.Time) ([]engine.GoalProgress, error)
}

// PortfolioSnapshotServicer records and serves daily net-worth history.
type PortfolioSnapshotServicer interface {
	ComputeAndRecordSnapshots(recordedAt time.Time) (int, error)
	GetSnapshots(userID string, from, to time.Time, page pagination.PageRequest) (*pagination.PageResponse[models.PortfolioSnapshot], error)
	GetLatestSnapshot(userID string) (*models.PortfolioSnapshot, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}
