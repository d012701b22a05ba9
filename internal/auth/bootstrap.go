package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/fruitstand-backend/internal/users"
	"github.com/angelmondragon/fruitstand-backend/pkg/config"
	"github.com/angelmondragon/fruitstand-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/fruitstand-backend/pkg/errors"
	"github.com/angelmondragon/fruitstand-backend/pkg/logger"
	"github.com/angelmondragon/fruitstand-backend/pkg/security"
	"gorm.io/gorm"
)

const tempAdminPasswordLength = 24

// EnsureAdmin seeds or promotes the configured administrator account at
// startup. It is a no-op when no admin email is configured. When the account
// must be created and no password is configured, a temporary one is generated
// and logged once.
func EnsureAdmin(ctx context.Context, client *db.Client, adminCfg config.AdminConfig, passwordCfg config.PasswordConfig, logg *logger.Logger) error {
	email := strings.ToLower(strings.TrimSpace(adminCfg.Email))
	if email == "" {
		logg.Warn(ctx, "no admin email configured, skipping admin bootstrap")
		return nil
	}

	return client.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		existing, err := userRepo.FindByEmail(ctx, email)
		if err == nil {
			if existing.IsAdmin {
				return nil
			}
			if err := tx.WithContext(ctx).
				Model(existing).
				UpdateColumn("is_admin", true).Error; err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "promote admin")
			}
			logg.Info(logg.WithUserID(ctx, existing.ID.String()), "promoted existing user to admin")
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup admin user")
		}

		password := adminCfg.Password
		generated := false
		if password == "" {
			password, err = security.GenerateTempPassword(tempAdminPasswordLength)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate admin password")
			}
			generated = true
		}

		passwordHash, err := security.HashPassword(password, passwordCfg)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash admin password")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Name:         adminCfg.Name,
			Email:        email,
			PasswordHash: passwordHash,
			IsAdmin:      true,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create admin user")
		}

		seededCtx := logg.WithUserID(ctx, user.ID.String())
		if generated {
			seededCtx = logg.WithField(seededCtx, "temp_password", password)
		}
		logg.Info(seededCtx, "seeded admin account")
		return nil
	})
}
