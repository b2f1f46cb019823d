package services

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"fintrack/internal/engine"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/uuid"
)

// backupService converts a user's stored data to and from engine snapshots.
type backupService struct {
	db       *gorm.DB
	settings SettingsServicer
	now      func() time.Time
}

// NewBackupService creates a new BackupServicer.
func NewBackupService(db *gorm.DB, settings SettingsServicer) BackupServicer {
	return &backupService{db: db, settings: settings, now: time.Now}
}

// Export loads everything the user owns into a snapshot.
func (s *backupService) Export(userID string) (*engine.Snapshot, error) {
	settings, err := s.settings.EngineSettings(userID)
	if err != nil {
		return nil, err
	}

	var accounts []models.AssetAccount
	if err := s.db.Where("user_id = ?", userID).
		Preload("Assets", orderedAssets).
		Order("sort_order ASC, created_at ASC").
		Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var records []models.CashflowRecord
	if err := s.db.Where("user_id = ?", userID).
		Preload("Account").
		Order("date ASC, created_at ASC").
		Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := s.db.Where("user_id = ?", userID).
		Order("month ASC, category ASC").
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var goals []models.Goal
	if err := s.db.Where("user_id = ?", userID).
		Preload("Links").
		Order("created_at ASC").
		Find(&goals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	snap := &engine.Snapshot{
		Accounts: make([]engine.Account, len(accounts)),
		Records:  make([]engine.CashflowRecord, len(records)),
		Budgets:  make([]engine.Budget, len(budgets)),
		Goals:    make([]engine.Goal, len(goals)),
		Settings: settings,
		TakenAt:  s.now().UTC(),
	}
	for i := range accounts {
		snap.Accounts[i] = accounts[i].ToEngine()
	}
	for i := range records {
		snap.Records[i] = records[i].ToEngine()
	}
	for i := range budgets {
		snap.Budgets[i] = budgets[i].ToEngine()
	}
	for i := range goals {
		snap.Goals[i] = goals[i].ToEngine()
	}
	return snap, nil
}

func invalidBackup(format string, args ...any) error {
	return apperrors.WithMessage(apperrors.ErrInvalidBackup, fmt.Sprintf(format, args...))
}

func validateSnapshot(snap engine.Snapshot) error {
	for i, a := range snap.Accounts {
		if strings.TrimSpace(a.Name) == "" {
			return invalidBackup("account %d has no name", i)
		}
		for _, asset := range a.Assets {
			if !asset.Type.Valid() {
				return invalidBackup("asset %q has unknown type %q", asset.Code, asset.Type)
			}
		}
	}
	for i, r := range snap.Records {
		if !r.Type.Valid() {
			return invalidBackup("record %d has unknown type %q", i, r.Type)
		}
		if _, err := time.Parse(dateLayout, r.Date); err != nil {
			return invalidBackup("record %d has invalid date %q", i, r.Date)
		}
	}
	for i, b := range snap.Budgets {
		if !validMonth(b.Month) {
			return invalidBackup("budget %d has invalid month %q", i, b.Month)
		}
	}
	for i, g := range snap.Goals {
		if strings.TrimSpace(g.Name) == "" {
			return invalidBackup("goal %d has no name", i)
		}
	}
	return nil
}

// remap hands out fresh ids, remembering the original ones so references
// inside the snapshot can be rewritten.
type remap map[string]string

func (m remap) fresh(old string) string {
	id := uuid.New()
	if old != "" {
		m[old] = id
	}
	return id
}

// Import replaces all of the user's data with the snapshot. Every row gets a
// new id; references between rows are preserved.
func (s *backupService) Import(userID string, snap engine.Snapshot) (*ImportResult, error) {
	if err := validateSnapshot(snap); err != nil {
		return nil, err
	}

	result := &ImportResult{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := purgeUserData(tx, userID); err != nil {
			return err
		}

		accountIDs := remap{}
		for i, a := range snap.Accounts {
			account := models.AssetAccount{
				Base:      models.Base{ID: accountIDs.fresh(a.ID)},
				UserID:    userID,
				Name:      strings.TrimSpace(a.Name),
				SortOrder: i,
			}
			if err := tx.Omit("Assets").Create(&account).Error; err != nil {
				return err
			}
			for _, asset := range a.Assets {
				row := models.AssetFromEngine(account.ID, asset)
				row.ID = ""
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
				result.Assets++
			}
			result.Accounts++
		}

		// templates first so generated copies can point at their new ids
		recordIDs := remap{}
		for _, r := range snap.Records {
			recordIDs.fresh(r.ID)
		}
		for _, r := range snap.Records {
			row := models.CashflowRecordFromEngine(userID, r)
			row.ID = recordIDs[r.ID]
			if row.ID == "" {
				row.ID = uuid.New()
			}
			row.AccountID = remapped(accountIDs, row.AccountID)
			row.SourceID = remapped(recordIDs, row.SourceID)
			if err := tx.Omit("Account").Create(&row).Error; err != nil {
				return err
			}
			result.Records++
		}

		// a later entry for the same month and category wins
		budgets := make(map[[2]string]float64)
		var order [][2]string
		for _, b := range snap.Budgets {
			key := [2]string{b.Month, strings.TrimSpace(b.Category)}
			if _, ok := budgets[key]; !ok {
				order = append(order, key)
			}
			budgets[key] = b.Amount.Float()
		}
		for _, key := range order {
			if budgets[key] <= 0 || key[1] == "" {
				continue
			}
			row := models.Budget{UserID: userID, Month: key[0], Category: key[1], Amount: budgets[key]}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			result.Budgets++
		}

		for _, g := range snap.Goals {
			goal := models.Goal{
				UserID:        userID,
				Name:          strings.TrimSpace(g.Name),
				TargetAmount:  g.TargetAmount.Float(),
				TargetDate:    g.TargetDate,
				CurrentAmount: g.CurrentAmount.Float(),
			}
			if err := tx.Omit("Links").Create(&goal).Error; err != nil {
				return err
			}
			var links []string
			for _, id := range g.LinkedAccountIDs {
				if mapped, ok := accountIDs[id]; ok {
					links = append(links, mapped)
				}
			}
			if err := replaceLinks(tx, goal.ID, links); err != nil {
				return err
			}
			result.Goals++
		}

		settings := models.Settings{
			UserID:             userID,
			CustomIncome:       cleanCategories(snap.Settings.CustomIncome),
			CustomExpense:      cleanCategories(snap.Settings.CustomExpense),
			LastRecurringCheck: snap.Settings.LastRecurringCheck,
		}
		if r := snap.Settings.ManualRate; r != nil && r.Float() > 0 {
			v := r.Float()
			settings.ManualRate = &v
		}
		return tx.Save(&settings).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// remapped rewrites a reference, dropping it when the target was not part of
// the snapshot.
func remapped(ids remap, ref *string) *string {
	if ref == nil {
		return nil
	}
	if mapped, ok := ids[*ref]; ok {
		return &mapped
	}
	return nil
}

func purgeUserData(tx *gorm.DB, userID string) error {
	accountIDs := tx.Unscoped().Model(&models.AssetAccount{}).Select("id").Where("user_id = ?", userID)
	goalIDs := tx.Unscoped().Model(&models.Goal{}).Select("id").Where("user_id = ?", userID)

	// Children first; every delete is hard so re-imported ids cannot collide.
	deletes := []struct {
		model any
		where string
		arg   any
	}{
		{&models.GoalAccountLink{}, "goal_id IN (?)", goalIDs},
		{&models.Goal{}, "user_id = ?", userID},
		{&models.Budget{}, "user_id = ?", userID},
		{&models.CashflowRecord{}, "user_id = ?", userID},
		{&models.Asset{}, "account_id IN (?)", accountIDs},
		{&models.AssetAccount{}, "user_id = ?", userID},
	}
	for _, d := range deletes {
		if err := tx.Unscoped().Where(d.where, d.arg).Delete(d.model).Error; err != nil {
			return err
		}
	}
	return nil
}
