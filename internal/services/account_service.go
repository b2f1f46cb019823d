package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"fintrack/internal/engine"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// accountService handles asset accounts and the holdings inside them.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

func validateAsset(in AssetInput) error {
	if strings.TrimSpace(in.Code) == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "asset code is required")
	}
	if !in.Type.Valid() {
		return apperrors.ErrInvalidAssetType
	}
	switch in.Currency {
	case "", engine.CurrencyTWD, engine.CurrencyUSD:
	default:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "currency must be TWD or USD")
	}
	return nil
}

func (in AssetInput) row(accountID string) models.Asset {
	return models.Asset{
		AccountID:    accountID,
		Code:         strings.TrimSpace(in.Code),
		Type:         in.Type,
		Units:        in.Units,
		Cost:         in.Cost,
		CurrentValue: in.CurrentValue,
		Currency:     in.Currency,
	}
}

// CreateAccount creates an account together with its initial holdings.
func (s *accountService) CreateAccount(userID, name, description string, assets []AssetInput) (*models.AssetAccount, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	seen := make(map[string]bool, len(assets))
	for _, in := range assets {
		if err := validateAsset(in); err != nil {
			return nil, err
		}
		code := strings.TrimSpace(in.Code)
		if seen[code] {
			return nil, apperrors.ErrDuplicateAssetCode
		}
		seen[code] = true
	}

	account := &models.AssetAccount{
		UserID:      userID,
		Name:        name,
		Description: description,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.AssetAccount{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		account.SortOrder = int(count)

		if err := tx.Create(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		for _, in := range assets {
			asset := in.row(account.ID)
			if err := tx.Create(&asset).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			account.Assets = append(account.Assets, asset)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if account.Assets == nil {
		account.Assets = []models.Asset{}
	}
	return account, nil
}

func orderedAssets(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

// GetUserAccounts retrieves a paginated list of accounts with their assets.
func (s *accountService) GetUserAccounts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.AssetAccount], error) {
	page.Defaults()

	var totalItems int64
	if err := s.db.Model(&models.AssetAccount{}).Where("user_id = ?", userID).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.AssetAccount
	if err := s.db.Where("user_id = ?", userID).Preload("Assets", orderedAssets).
		Order("sort_order ASC, created_at ASC").
		Scopes(pagination.Paginate(page)).
		Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(accounts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAllAccounts returns every account of the user in display order.
func (s *accountService) GetAllAccounts(userID string) ([]models.AssetAccount, error) {
	var accounts []models.AssetAccount
	if err := s.db.Where("user_id = ?", userID).
		Preload("Assets", orderedAssets).
		Order("sort_order ASC, created_at ASC").
		Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return accounts, nil
}

// GetAccountByID retrieves one of the user's accounts.
func (s *accountService) GetAccountByID(userID, accountID string) (*models.AssetAccount, error) {
	var account models.AssetAccount
	if err := s.db.Where("id = ? AND user_id = ?", accountID, userID).
		Preload("Assets", orderedAssets).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// UpdateAccount renames an account or changes its description.
func (s *accountService) UpdateAccount(userID, accountID, name, description string) (*models.AssetAccount, error) {
	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{"description": description}
	if name = strings.TrimSpace(name); name != "" {
		updates["name"] = name
	}
	if err := s.db.Model(account).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetAccountByID(userID, accountID)
}

// DeleteAccount removes an account, its holdings and any goal links to it.
func (s *accountService) DeleteAccount(userID, accountID string) error {
	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account_id = ?", account.ID).Delete(&models.Asset{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Where("account_id = ?", account.ID).Delete(&models.GoalAccountLink{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Model(&models.CashflowRecord{}).Where("account_id = ?", account.ID).Update("account_id", nil).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

func (s *accountService) codeTaken(accountID, code, exceptID string) (bool, error) {
	var count int64
	q := s.db.Model(&models.Asset{}).Where("account_id = ? AND code = ?", accountID, code)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddAsset adds a holding to an account.
func (s *accountService) AddAsset(userID, accountID string, in AssetInput) (*models.Asset, error) {
	if err := validateAsset(in); err != nil {
		return nil, err
	}
	if _, err := s.GetAccountByID(userID, accountID); err != nil {
		return nil, err
	}

	taken, err := s.codeTaken(accountID, strings.TrimSpace(in.Code), "")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if taken {
		return nil, apperrors.ErrDuplicateAssetCode
	}

	asset := in.row(accountID)
	if err := s.db.Create(&asset).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &asset, nil
}

func (s *accountService) getAsset(accountID, assetID string) (*models.Asset, error) {
	var asset models.Asset
	if err := s.db.Where("id = ? AND account_id = ?", assetID, accountID).First(&asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAssetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &asset, nil
}

// UpdateAsset replaces the editable fields of a holding. The stored row is
// re-canonicalized, so switching to a lump-sum type resets units.
func (s *accountService) UpdateAsset(userID, accountID, assetID string, in AssetInput) (*models.Asset, error) {
	if err := validateAsset(in); err != nil {
		return nil, err
	}
	if _, err := s.GetAccountByID(userID, accountID); err != nil {
		return nil, err
	}
	asset, err := s.getAsset(accountID, assetID)
	if err != nil {
		return nil, err
	}

	taken, err := s.codeTaken(accountID, strings.TrimSpace(in.Code), assetID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if taken {
		return nil, apperrors.ErrDuplicateAssetCode
	}

	updated := in.row(accountID)
	updated.Base = asset.Base
	if err := s.db.Save(&updated).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &updated, nil
}

// DeleteAsset removes a holding.
func (s *accountService) DeleteAsset(userID, accountID, assetID string) error {
	if _, err := s.GetAccountByID(userID, accountID); err != nil {
		return err
	}
	asset, err := s.getAsset(accountID, assetID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(asset).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
