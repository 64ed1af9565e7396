package config

import (
	"errors"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"odeplac.in/pro/models"
)

// RunAllSeeding seeds company settings and the service identity. Safe to
// run on every boot: existing rows are left untouched.
func RunAllSeeding() error {
	log.Info("=== starting database seeding ===")

	if err := SeedSettings(); err != nil {
		return err
	}
	if err := SeedServiceUser(); err != nil {
		return err
	}

	log.Info("=== database seeding complete ===")
	return nil
}

// SeedSettings creates the default company-profile rows.
func SeedSettings() error {
	defaults := []models.Setting{
		{Key: models.SettingCompanyName, Value: "ODEPLAC PRO"},
		{Key: models.SettingCompanyAddr, Value: ""},
		{Key: models.SettingCompanyLogo, Value: ""},
		{Key: models.SettingDefaultMarkup, Value: "30"},
	}

	for _, s := range defaults {
		var existing models.Setting
		err := DB.Where("key = ?", s.Key).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := DB.Create(&s).Error; err != nil {
				return err
			}
			log.Infof("seeded setting %s", s.Key)
		} else if err != nil {
			return err
		}
	}
	return nil
}

// SeedServiceUser creates the configured system identity. Rows written by
// automated flows (portal approvals, seeding) carry this identity instead
// of a literal constant baked into business logic.
func SeedServiceUser() error {
	email := App.ServiceUserEmail

	var existing models.User
	err := DB.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	// Random password, never used for login: the service identity cannot
	// authenticate interactively.
	hash, err := bcrypt.GenerateFromPassword([]byte(models.NewPortalToken()), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u := models.User{
		Name:         "Sistema ODEPLAC",
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleService,
	}
	if err := DB.Create(&u).Error; err != nil {
		return err
	}
	log.Infof("seeded service user %s", email)
	return nil
}
