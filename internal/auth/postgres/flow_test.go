package postgres_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nexthealth/careplatform/internal"
	"github.com/nexthealth/careplatform/internal/auth"
	authPostgres "github.com/nexthealth/careplatform/internal/auth/postgres"
	"github.com/nexthealth/careplatform/internal/core/datamodel"
	"github.com/nexthealth/careplatform/internal/core/events"
	"github.com/nexthealth/careplatform/internal/tenant"
	tenantPostgres "github.com/nexthealth/careplatform/internal/tenant/postgres"
)

// End-to-end specs: the real auth service over the real store, no mocks.
var _ = Describe("Login Flow", func() {
	var (
		db      *gorm.DB
		service *auth.Service
		bus     *events.EventBus
		ctx     context.Context
	)

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))

	seedAdmin := func(email, password string) {
		t := &datamodel.Tenant{
			ID:                 7,
			Name:               "Sakura Clinic",
			FacilityCode:       "1310400001",
			SubscriptionStatus: datamodel.SubscriptionActive,
		}
		Expect(db.Create(t).Error).NotTo(HaveOccurred())

		wildcard := datamodel.Permission{Name: "*"}
		Expect(db.Create(&wildcard).Error).NotTo(HaveOccurred())

		role := &datamodel.Role{
			ID: "role-admin", TenantID: t.ID,
			Name: "admin", DisplayName: "Administrator",
			Priority: 100, HomePage: "/admin/dashboard",
			Permissions: []datamodel.Permission{wildcard},
		}
		Expect(db.Create(role).Error).NotTo(HaveOccurred())

		hash, err := auth.HashPassword(password, 4)
		Expect(err).NotTo(HaveOccurred())
		user := &datamodel.User{ID: "admin-1", Email: email, Name: "Admin", PasswordHash: &hash}
		Expect(db.Create(user).Error).NotTo(HaveOccurred())

		Expect(db.Create(&datamodel.Employment{
			UserID: user.ID, TenantID: t.ID, RoleID: &role.ID,
			Status: datamodel.EmploymentAccepted, IsActive: true, IsPrimary: true,
		}).Error).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(
			&datamodel.Tenant{}, &datamodel.User{}, &datamodel.Role{},
			&datamodel.Permission{}, &datamodel.RolePermission{}, &datamodel.Employment{},
		)
		Expect(err).NotTo(HaveOccurred())

		authRepo := authPostgres.NewRepository(db)
		tenants := tenant.NewService(tenantPostgres.NewTenantRepository(db), discard)
		bus = events.NewEventBus(discard)
		tokens := auth.NewTokenIssuer("flow-test-secret", time.Hour)
		service = auth.NewService(authRepo, authRepo, tenants, tokens, bus, internal.AuthConfig{
			JWTSecret:     "flow-test-secret",
			TokenDuration: time.Hour,
			BCryptCost:    4,
			TOTPIssuer:    "CarePlatform",
		}, discard)
		ctx = context.Background()
	})

	It("runs the full lockout scenario through the store", func() {
		seedAdmin("a@x.com", "P1")

		result, err := service.Login(ctx, auth.LoginDTO{Email: "a@x.com", Password: "P1"})
		Expect(err).NotTo(HaveOccurred())
		Expect(*result.User.TenantID).To(Equal(int64(7)))
		Expect(*result.User.Role).To(Equal("admin"))
		Expect(result.User.Permissions).To(Equal([]string{"*"}))

		_, err = service.Login(ctx, auth.LoginDTO{Email: "a@x.com", Password: "wrong"})
		Expect(err).To(MatchError(internal.ErrInvalidCredentials))

		var user datamodel.User
		Expect(db.First(&user, "id = ?", "admin-1").Error).NotTo(HaveOccurred())
		Expect(user.NumberTry).To(Equal(1))
		Expect(user.IsBlocked).To(BeFalse())

		for i := 0; i < 8; i++ {
			_, err = service.Login(ctx, auth.LoginDTO{Email: "a@x.com", Password: "wrong"})
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))
		}

		_, err = service.Login(ctx, auth.LoginDTO{Email: "a@x.com", Password: "wrong"})
		Expect(err).To(MatchError(internal.ErrAccountBlocked))

		_, err = service.Login(ctx, auth.LoginDTO{Email: "a@x.com", Password: "P1"})
		Expect(err).To(MatchError(internal.ErrAccountBlocked))
	})

	It("creates exactly one user and one pending employment per registration", func() {
		seedAdmin("a@x.com", "P1")

		_, err := service.Register(ctx, auth.RegisterDTO{
			FacilityCode: "1310400001",
			Name:         "New Nurse",
			Email:        "nurse@x.com",
			Password:     "longenough1",
		})
		Expect(err).NotTo(HaveOccurred())
		bus.Wait()

		var users, emps int64
		Expect(db.Model(&datamodel.User{}).Where("email = ?", "nurse@x.com").Count(&users).Error).NotTo(HaveOccurred())
		Expect(users).To(Equal(int64(1)))
		Expect(db.Model(&datamodel.Employment{}).Where("tenant_id = ? AND status = ?", 7, datamodel.EmploymentPending).Count(&emps).Error).NotTo(HaveOccurred())
		Expect(emps).To(Equal(int64(1)))

		_, err = service.Register(ctx, auth.RegisterDTO{
			FacilityCode: "1310400001",
			Name:         "New Nurse",
			Email:        "nurse@x.com",
			Password:     "longenough1",
		})
		Expect(err).To(MatchError(internal.ErrEmploymentExists))

		Expect(db.Model(&datamodel.User{}).Where("email = ?", "nurse@x.com").Count(&users).Error).NotTo(HaveOccurred())
		Expect(users).To(Equal(int64(1)))
		Expect(db.Model(&datamodel.Employment{}).Where("tenant_id = ? AND status = ?", 7, datamodel.EmploymentPending).Count(&emps).Error).NotTo(HaveOccurred())
		Expect(emps).To(Equal(int64(1)))
	})
})
