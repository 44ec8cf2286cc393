package seed

import (
	"context"
	"log"

	"github.com/cofoundry-tw/cofoundry-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

func strPtr(s string) *string { return &s }

// SeedData creates development fixtures: a few talent profiles, two
// recruiting projects and a pending application to exercise the workflow.
func SeedData(repos *repository.Repositories) {
	ctx := context.Background()

	// Skip if data already exists
	if existing, _ := repos.UserRepo.FindByEmail(ctx, "lin.chen@cofoundry.dev"); existing != nil {
		log.Println("[Seed] Data already exists, skipping...")
		return
	}

	log.Println("[Seed] Creating development data...")

	password, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	// ============================================
	// USERS
	// ============================================

	// 1. LIN - technical founder looking for a business co-founder
	lin := &repository.User{
		Email:                 "lin.chen@cofoundry.dev",
		Password:              string(password),
		Name:                  "Lin Chen",
		ContactInfo:           strPtr("@linchen on Telegram"),
		Skills:                []string{"Go", "PostgreSQL", "Kubernetes"},
		ExperienceDescription: "Backend engineer, 8 years. Built payments infra at two startups.",
		WorkMode:              repository.WorkModeFulltime,
		PartnerDescription:    "Looking for a business-minded co-founder who can own sales and fundraising.",
		LocationPreference:    repository.LocationRemote,
		IsPublic:              true,
	}
	if err := repos.UserRepo.Create(ctx, lin); err != nil {
		log.Printf("[Seed] Failed to create user: %v", err)
		return
	}

	// 2. MAYA - product designer, open to part-time
	maya := &repository.User{
		Email:                 "maya.lin@cofoundry.dev",
		Password:              string(password),
		Name:                  "Maya Lin",
		Skills:                []string{"Figma", "Product Design", "User Research"},
		ExperienceDescription: "Design lead, shipped consumer apps with 1M+ users.",
		WorkMode:              repository.WorkModeParttime,
		PartnerDescription:    "Want to join an early team with a working prototype.",
		LocationPreference:    repository.LocationSpecific,
		SpecificLocation:      strPtr("Taipei"),
		IsPublic:              true,
	}
	repos.UserRepo.Create(ctx, maya)

	// 3. DANIEL - growth marketer with a private profile
	daniel := &repository.User{
		Email:                 "daniel.wu@cofoundry.dev",
		Password:              string(password),
		Name:                  "Daniel Wu",
		Skills:                []string{"Growth", "SEO", "Paid Acquisition"},
		ExperienceDescription: "Ran growth at a B2B SaaS from seed to Series A.",
		WorkMode:              repository.WorkModeFulltime,
		PartnerDescription:    "Prefer fintech or devtools.",
		LocationPreference:    repository.LocationRemote,
		IsPublic:              false,
	}
	repos.UserRepo.Create(ctx, daniel)

	// ============================================
	// PROJECTS
	// ============================================

	ledgerly := &repository.Project{
		CreatorID:      lin.ID,
		Title:          "Ledgerly",
		Description:    "Open-source bookkeeping for indie hackers. MVP is live, looking for design and growth help.",
		TargetTeamSize: 4,
		RequiredRoles:  []string{"designer", "marketer"},
		RequiredSkills: []string{"Figma", "Growth"},
		ProjectStage:   repository.StageBeta,
		IsRecruiting:   true,
		IsPublic:       true,
	}
	if err := repos.ProjectRepo.Create(ctx, ledgerly); err != nil {
		log.Printf("[Seed] Failed to create project: %v", err)
		return
	}

	fieldnotes := &repository.Project{
		CreatorID:      maya.ID,
		Title:          "Fieldnotes",
		Description:    "Mobile-first research journal for UX teams. Still at the idea stage, need an engineer.",
		TargetTeamSize: 3,
		RequiredRoles:  []string{"engineer"},
		RequiredSkills: []string{"Go", "React Native"},
		ProjectStage:   repository.StageIdea,
		IsRecruiting:   true,
		IsPublic:       true,
	}
	repos.ProjectRepo.Create(ctx, fieldnotes)

	// ============================================
	// APPLICATIONS
	// ============================================

	// Maya applies to Ledgerly, left pending so the inbox has something in it
	repos.ApplicationRepo.Create(ctx, &repository.Application{
		ProjectID:   ledgerly.ID,
		ApplicantID: maya.ID,
		Message:     "I can take over the design side. Happy to start part-time.",
		Status:      repository.StatusPending,
	})

	log.Println("[Seed] Development data created")
	log.Println("[Seed] Login with lin.chen@cofoundry.dev / password123")
}
