package postgres_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nexthealth/careplatform/internal/core/datamodel"
	"github.com/nexthealth/careplatform/internal/employment"
	employmentPostgres "github.com/nexthealth/careplatform/internal/employment/postgres"
)

func TestEmploymentPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Employment Postgres Suite")
}

var _ = Describe("Employment Repository", func() {
	var (
		db     *gorm.DB
		repo   employment.RepositoryAPI
		ctx    context.Context
		tenant *datamodel.Tenant
		role   *datamodel.Role
	)

	seedUser := func(id string) {
		Expect(db.Create(&datamodel.User{ID: id, Email: id + "@example.com", Name: id}).Error).NotTo(HaveOccurred())
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

		tenant = &datamodel.Tenant{Name: "Sakura Clinic", FacilityCode: "1310400001"}
		Expect(db.Create(tenant).Error).NotTo(HaveOccurred())

		role = &datamodel.Role{
			ID: "role-doctor", TenantID: tenant.ID,
			Name: "doctor", DisplayName: "Doctor", Priority: 50,
		}
		Expect(db.Create(role).Error).NotTo(HaveOccurred())

		repo = employmentPostgres.NewEmploymentRepository(db)
		ctx = context.Background()
	})

	Describe("CreateInvite and GetByID", func() {
		It("stores the inviter and starts pending", func() {
			seedUser("target")
			seedUser("inviter")

			id, err := repo.CreateInvite(ctx, "target", tenant.ID, role.ID, "inviter")
			Expect(err).NotTo(HaveOccurred())

			emp, err := repo.GetByID(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(emp.Status).To(Equal(employment.StatusPending))
			Expect(emp.IsActive).To(BeFalse())
			Expect(*emp.InvitedByID).To(Equal("inviter"))
			Expect(emp.InvitedAt).NotTo(BeNil())
			Expect(emp.TenantName).To(Equal("Sakura Clinic"))
			Expect(*emp.RoleName).To(Equal("doctor"))
		})
	})

	Describe("Decide", func() {
		It("activates and assigns the role on accept", func() {
			seedUser("target")
			seedUser("inviter")
			id, err := repo.CreateInvite(ctx, "target", tenant.ID, role.ID, "inviter")
			Expect(err).NotTo(HaveOccurred())

			roleID := role.ID
			Expect(repo.Decide(ctx, id, employment.StatusAccepted, &roleID, true, true)).To(Succeed())

			emp, err := repo.GetByID(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(emp.Status).To(Equal(employment.StatusAccepted))
			Expect(emp.IsActive).To(BeTrue())
			Expect(emp.IsPrimary).To(BeTrue())
			Expect(emp.DecidedAt).NotTo(BeNil())

			has, err := repo.HasPrimary(ctx, "target")
			Expect(err).NotTo(HaveOccurred())
			Expect(has).To(BeTrue())

			active, err := repo.FindActiveForUserTenant(ctx, "target", tenant.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(active).NotTo(BeNil())
		})
	})

	Describe("SoftDelete", func() {
		It("hides the row from subsequent reads", func() {
			seedUser("target")
			seedUser("inviter")
			id, err := repo.CreateInvite(ctx, "target", tenant.ID, role.ID, "inviter")
			Expect(err).NotTo(HaveOccurred())

			Expect(repo.SoftDelete(ctx, id)).To(Succeed())

			emp, err := repo.GetByID(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(emp).To(BeNil())

			exists, err := repo.ExistsForTenant(ctx, "target", tenant.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
		})
	})

	Describe("GetRole", func() {
		It("scopes the lookup to the tenant", func() {
			info, err := repo.GetRole(ctx, role.ID, tenant.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Priority).To(Equal(50))

			info, err = repo.GetRole(ctx, role.ID, tenant.ID+1)
			Expect(err).NotTo(HaveOccurred())
			Expect(info).To(BeNil())
		})
	})
})
