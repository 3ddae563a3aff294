package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"studyhub/internal/app"
	"studyhub/internal/config"
	"studyhub/internal/logging"
	"studyhub/internal/model"
	"studyhub/internal/service"
)

const tokenTTL = 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stores, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("storage unavailable", zap.Error(err))
	}
	defer stores.Close(context.Background())

	now := time.Now().UTC()

	tutors := []*model.TutorProfile{
		{
			ID:              "tutor_ada",
			Name:            "Ada Okafor",
			Email:           "ada@example.com",
			Subjects:        []string{"Math", "Physics"},
			Availability:    []string{"Monday", "Wednesday 16", "Saturday"},
			Rating:          4.9,
			Bio:             "Former olympiad coach. Patient with proofs and problem sets.",
			HourlyRate:      40,
			ExperienceYears: 8,
			CreatedAt:       now,
		},
		{
			ID:              "tutor_jonas",
			Name:            "Jonas Lind",
			Email:           "jonas@example.com",
			Subjects:        []string{"Chemistry", "Biology"},
			Availability:    []string{"Tuesday", "Thursday 18"},
			Rating:          4.6,
			Bio:             "Lab-first teaching with lots of diagrams.",
			HourlyRate:      32,
			ExperienceYears: 5,
			CreatedAt:       now,
		},
		{
			ID:              "tutor_mei",
			Name:            "Mei Tanaka",
			Email:           "mei@example.com",
			Subjects:        []string{"History", "English", "Math"},
			Availability:    []string{"Friday", "Sunday 10"},
			Rating:          4.7,
			Bio:             "Essay structure, source analysis and exam technique.",
			HourlyRate:      35,
			ExperienceYears: 6,
			CreatedAt:       now,
		},
	}

	users := []*model.UserProfile{
		{
			ID:            "student_sam",
			Name:          "Sam Rivera",
			Email:         "sam@example.com",
			Role:          model.RoleStudent,
			Subjects:      []string{"Math", "Chemistry"},
			Availability:  []string{"Monday", "Thursday"},
			GradeLevel:    "11",
			LearningStyle: "visual",
			Goals:         "Prepare for calculus finals",
			CreatedAt:     now,
		},
	}
	for _, t := range tutors {
		users = append(users, &model.UserProfile{
			ID:           t.ID,
			Name:         t.Name,
			Email:        t.Email,
			Role:         model.RoleTutor,
			Subjects:     t.Subjects,
			Availability: t.Availability,
			CreatedAt:    now,
		})
	}

	for _, t := range tutors {
		if err := stores.ProfileRepo.UpsertTutor(ctx, t); err != nil {
			log.Fatal("failed to upsert tutor", zap.String("id", t.ID), zap.Error(err))
		}
	}
	for _, u := range users {
		if err := stores.ProfileRepo.UpsertUser(ctx, u); err != nil {
			log.Fatal("failed to upsert user", zap.String("id", u.ID), zap.Error(err))
		}
	}
	log.Info("seeded profiles", zap.Int("tutors", len(tutors)), zap.Int("users", len(users)))

	authSvc, err := service.NewAuthService(cfg)
	if err != nil {
		log.Warn("skipping tokens", zap.Error(err))
		return
	}
	for _, u := range users {
		token, err := authSvc.IssueToken(u.ID, u.Role, tokenTTL)
		if err != nil {
			log.Fatal("failed to issue token", zap.String("id", u.ID), zap.Error(err))
		}
		fmt.Printf("%s (%s): %s\n", u.ID, u.Role, token)
	}
}
