// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/Preeth02/aqi-using-ai/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the password every seeded account gets, so developers
// can sign in as any of them.
const DemoPassword = "password123"

// Seeder creates demo users and mailboxes in the database.
type Seeder struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:   db,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll removes all seeded data. Messages go first to satisfy the
// foreign key.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	if err := s.db.Exec("DELETE FROM messages").Error; err != nil {
		return fmt.Errorf("failed to clear messages: %w", err)
	}
	if err := s.db.Exec("DELETE FROM users").Error; err != nil {
		return fmt.Errorf("failed to clear users: %w", err)
	}
	return nil
}

// BuildUser constructs a verified user with a fake identity. It does not
// persist.
func (s *Seeder) BuildUser() (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	username := strings.ToLower(gofakeit.Username())
	// Usernames are restricted to [a-zA-Z0-9_]
	username = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return '_'
	}, username)

	accepting := s.rand.Intn(10) > 1 // most demo users accept messages

	return &models.User{
		Username:            username,
		Email:               gofakeit.Email(),
		Password:            string(hashed),
		VerifyCode:          "000000",
		VerifyCodeExpiry:    time.Now().Add(-time.Hour),
		IsVerified:          true,
		IsAcceptingMessages: accepting,
	}, nil
}

// SeedUsers creates n verified users plus a fixed "demo" account.
func (s *Seeder) SeedUsers(n int) ([]models.User, error) {
	log.Printf("Seeding %d users...", n)

	users := make([]models.User, 0, n+1)

	hashed, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	demo := models.User{
		Username:            "demo",
		Email:               "demo@example.com",
		Password:            string(hashed),
		VerifyCode:          "000000",
		VerifyCodeExpiry:    time.Now().Add(-time.Hour),
		IsVerified:          true,
		IsAcceptingMessages: true,
	}
	if err := s.db.Create(&demo).Error; err != nil {
		return nil, fmt.Errorf("failed to create demo user: %w", err)
	}
	users = append(users, demo)

	for i := 0; i < n; i++ {
		user, err := s.BuildUser()
		if err != nil {
			return nil, err
		}
		if err := s.db.Create(user).Error; err != nil {
			// Fake usernames collide occasionally; skip and continue
			log.Printf("skipping user %q: %v", user.Username, err)
			continue
		}
		users = append(users, *user)
	}

	log.Printf("Created %d users (password for all: %s)", len(users), DemoPassword)
	return users, nil
}

// SeedMessages fills each accepting user's mailbox with up to maxPerUser
// anonymous messages spread over the last 30 days.
func (s *Seeder) SeedMessages(users []models.User, maxPerUser int) (int, error) {
	log.Printf("Seeding messages (up to %d per user)...", maxPerUser)

	total := 0
	for _, user := range users {
		if !user.IsAcceptingMessages {
			continue
		}
		count := s.rand.Intn(maxPerUser + 1)
		for i := 0; i < count; i++ {
			daysBack := s.rand.Intn(30)
			hoursBack := s.rand.Intn(24)
			message := models.Message{
				UserID:    user.ID,
				Content:   gofakeit.Question(),
				CreatedAt: time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour),
			}
			if err := s.db.Create(&message).Error; err != nil {
				return total, fmt.Errorf("failed to create message: %w", err)
			}
			total++
		}
	}

	log.Printf("Created %d messages", total)
	return total, nil
}
