package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/nexthealth/careplatform/internal/core/datamodel"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"notifications", "role_permissions", "employments", "roles", "permissions", "users", "tenants"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		if err := seed(db); err != nil {
			log.Fatalf("seeding failed: %v", err)
		}
		fmt.Println("Seeding complete")
	},
}

// permissionCatalog is the resource.action grants roles are built from.
var permissionCatalog = []datamodel.Permission{
	{Name: "citizens.read", Description: "View citizen records"},
	{Name: "citizens.view", Description: "Open citizen detail pages"},
	{Name: "citizens.create", Description: "Register new citizens"},
	{Name: "citizens.update", Description: "Edit citizen records"},
	{Name: "schedules.read", Description: "View schedules"},
	{Name: "schedules.view", Description: "Open schedule detail pages"},
	{Name: "schedules.create", Description: "Create schedule entries"},
	{Name: "employees.read", Description: "View facility staff"},
	{Name: "employees.view", Description: "Open staff detail pages"},
	{Name: "employees.create", Description: "Invite facility staff"},
	{Name: "employees.update", Description: "Manage facility staff"},
	{Name: "employments.create", Description: "Invite users into the facility"},
	{Name: "employments.update", Description: "Decide employment requests"},
	{Name: "regulations.read", Description: "View regulations"},
	{Name: "regulations.view", Description: "Open regulation detail pages"},
}

func seed(db *gorm.DB) error {
	tenants := []datamodel.Tenant{
		{Name: "Sakura Clinic", MunicipalityName: "Shibuya", FacilityCode: "1310400001", SubscriptionStatus: datamodel.SubscriptionActive},
		{Name: "Midori Care Home", MunicipalityName: "Setagaya", FacilityCode: "1311200002", SubscriptionStatus: datamodel.SubscriptionActive},
		{Name: "Kawa Clinic", MunicipalityName: "Ota", FacilityCode: "1311100003", SubscriptionStatus: datamodel.SubscriptionBlocked},
	}
	for i := range tenants {
		if err := db.Where("facility_code = ?", tenants[i].FacilityCode).
			FirstOrCreate(&tenants[i]).Error; err != nil {
			return fmt.Errorf("seed tenant %s: %w", tenants[i].FacilityCode, err)
		}
	}

	perms := make(map[string]datamodel.Permission, len(permissionCatalog))
	for _, p := range permissionCatalog {
		rec := p
		if err := db.Where("name = ?", p.Name).FirstOrCreate(&rec).Error; err != nil {
			return fmt.Errorf("seed permission %s: %w", p.Name, err)
		}
		perms[p.Name] = rec
	}

	roleSpecs := []struct {
		Name        string
		DisplayName string
		Priority    int
		HomePage    string
		Grants      []string
	}{
		{"admin", "Administrator", 100, "/admin/dashboard", permissionNames()},
		{"doctor", "Doctor", 50, "/citizens", []string{
			"citizens.read", "citizens.view", "citizens.create", "citizens.update",
			"schedules.read", "schedules.view", "schedules.create",
			"regulations.read", "regulations.view",
		}},
		{"typist", "Typist", 10, "/regulations", []string{
			"citizens.read", "citizens.view",
			"regulations.read", "regulations.view",
		}},
	}

	roleIDs := make(map[string]map[string]string) // facility code -> role name -> id
	for _, t := range tenants {
		roleIDs[t.FacilityCode] = make(map[string]string)
		for _, spec := range roleSpecs {
			role := datamodel.Role{
				ID:          uuid.NewString(),
				TenantID:    t.ID,
				Name:        spec.Name,
				DisplayName: spec.DisplayName,
				Priority:    spec.Priority,
				HomePage:    spec.HomePage,
			}
			if err := db.Where("tenant_id = ? AND name = ?", t.ID, spec.Name).
				FirstOrCreate(&role).Error; err != nil {
				return fmt.Errorf("seed role %s: %w", spec.Name, err)
			}
			roleIDs[t.FacilityCode][spec.Name] = role.ID
			for _, grant := range spec.Grants {
				rp := datamodel.RolePermission{RoleID: role.ID, PermissionID: perms[grant].ID}
				if err := db.Where("role_id = ? AND permission_id = ?", role.ID, rp.PermissionID).
					FirstOrCreate(&rp).Error; err != nil {
					return fmt.Errorf("seed grant %s for %s: %w", grant, spec.Name, err)
				}
			}
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	hashStr := string(hash)

	userSpecs := []struct {
		Email           string
		Name            string
		IsSystemManager bool
		FacilityCode    string
		RoleName        string
	}{
		{"manager@careplatform.dev", "System Manager", true, "", ""},
		{"admin@sakura.dev", "Hanako Sato", false, "1310400001", "admin"},
		{"doctor@sakura.dev", "Taro Yamada", false, "1310400001", "doctor"},
		{"typist@midori.dev", "Yuki Tanaka", false, "1311200002", "typist"},
	}

	for _, spec := range userSpecs {
		u := datamodel.User{
			ID:              uuid.NewString(),
			Email:           spec.Email,
			Name:            spec.Name,
			PasswordHash:    &hashStr,
			AcceptedTerms:   true,
			IsSystemManager: spec.IsSystemManager,
		}
		if err := db.Where("email = ?", spec.Email).FirstOrCreate(&u).Error; err != nil {
			return fmt.Errorf("seed user %s: %w", spec.Email, err)
		}
		fmt.Println("Seeded user:", spec.Email)

		if spec.FacilityCode == "" {
			continue
		}
		var t datamodel.Tenant
		if err := db.Where("facility_code = ?", spec.FacilityCode).First(&t).Error; err != nil {
			return fmt.Errorf("lookup tenant %s: %w", spec.FacilityCode, err)
		}
		roleID := roleIDs[spec.FacilityCode][spec.RoleName]
		now := time.Now()
		emp := datamodel.Employment{
			UserID:    u.ID,
			TenantID:  t.ID,
			RoleID:    &roleID,
			Status:    datamodel.EmploymentAccepted,
			IsActive:  true,
			IsPrimary: true,
			DecidedAt: &now,
		}
		if err := db.Where("user_id = ? AND tenant_id = ?", u.ID, t.ID).
			FirstOrCreate(&emp).Error; err != nil {
			return fmt.Errorf("seed employment for %s: %w", spec.Email, err)
		}
	}

	return nil
}

func permissionNames() []string {
	names := make([]string, 0, len(permissionCatalog))
	for _, p := range permissionCatalog {
		names = append(names, p.Name)
	}
	return names
}
