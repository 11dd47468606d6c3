package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/gymdesk-backend/internal/store"
	"github.com/angelmondragon/gymdesk-backend/pkg/config"
	"github.com/angelmondragon/gymdesk-backend/pkg/db/models"
	"github.com/angelmondragon/gymdesk-backend/pkg/enums"
	"github.com/angelmondragon/gymdesk-backend/pkg/logger"
	"github.com/angelmondragon/gymdesk-backend/pkg/security"
)

const memoryAdminEmail = "admin@gymdesk.local"

// SeedIfRequested loads demo plans and members and ensures a bootstrap admin
// when GYMDESK_SEED_DEMO_DATA is on. The memory store always gets an admin;
// without configured credentials a temporary password is generated and logged.
func SeedIfRequested(ctx context.Context, cfg *config.Config, logg *logger.Logger, b *Backend, now time.Time) error {
	if !cfg.FeatureFlags.SeedDemoData {
		return nil
	}

	result, err := store.SeedDemo(ctx, b.Store, now)
	if err != nil {
		return fmt.Errorf("seed demo data: %w", err)
	}
	logg.Info(logg.WithFields(ctx, map[string]any{"plans": result.Plans, "members": result.Members}), "demo data seeded")

	boot := cfg.Bootstrap
	if boot.AdminEmail == "" && b.Memory {
		boot.AdminEmail = memoryAdminEmail
	}
	if boot.AdminEmail == "" {
		return nil
	}

	generated := false
	if boot.AdminPassword == "" {
		pw, err := security.GenerateTempPassword(16)
		if err != nil {
			return err
		}
		boot.AdminPassword = pw
		generated = true
	}

	created, err := EnsureAdmin(ctx, b.Store, boot, cfg.Password)
	if err != nil {
		return err
	}
	if !created {
		return nil
	}
	fields := map[string]any{"email": boot.AdminEmail}
	if generated {
		fields["temp_password"] = boot.AdminPassword
	}
	logg.Warn(logg.WithFields(ctx, fields), "bootstrap admin created")
	return nil
}

// EnsureAdmin creates the admin account unless the email is already taken.
func EnsureAdmin(ctx context.Context, st store.Store, boot config.BootstrapConfig, pwd config.PasswordConfig) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(boot.AdminEmail))
	if _, err := st.StaffUsers().FindByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return false, fmt.Errorf("lookup admin: %w", err)
	}

	if err := security.ValidatePassword(boot.AdminPassword); err != nil {
		return false, err
	}
	hash, err := security.HashPassword(boot.AdminPassword, pwd)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}
	name := strings.TrimSpace(boot.AdminName)
	if name == "" {
		name = "Gym Admin"
	}
	user := &models.StaffUser{
		Email:        email,
		Name:         name,
		Role:         enums.StaffRoleAdmin,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := st.StaffUsers().Create(ctx, user); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}
