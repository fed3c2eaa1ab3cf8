package seed

import (
	"context"
	"errors"
	"fmt"

	"outreach/internal/store"
	"outreach/pkg/types"
)

type volunteerSeed struct {
	ID       string
	FullName string
	Email    string
	Phone    string
	Zone     string
}

var fakeVolunteers = []volunteerSeed{
	{ID: "11111111-1111-1111-1111-111111111111", FullName: "Ava Williams", Email: "ava.williams+seed1@example.com", Phone: "+15550100001", Zone: "North"},
	{ID: "22222222-2222-2222-2222-222222222222", FullName: "Liam Johnson", Email: "liam.johnson+seed2@example.com", Phone: "+15550100002", Zone: "South"},
	{ID: "33333333-3333-3333-3333-333333333333", FullName: "Noah Brown", Email: "noah.brown+seed3@example.com", Phone: "+15550100003", Zone: "East"},
	{ID: "44444444-4444-4444-4444-444444444444", FullName: "Mia Davis", Email: "mia.davis+seed4@example.com", Phone: "+15550100004", Zone: "West"},
	{ID: "55555555-5555-5555-5555-555555555555", FullName: "Elijah Garcia", Email: "elijah.garcia+seed5@example.com", Phone: "+15550100005", Zone: "Central"},
}

func seedVolunteerIDs() []string {
	ids := make([]string, 0, len(fakeVolunteers))
	for _, volunteer := range fakeVolunteers {
		ids = append(ids, volunteer.ID)
	}
	return ids
}

func SeedVolunteers(ctx context.Context, userRepo *store.UserRepository) error {
	seeded := 0
	for _, volunteer := range fakeVolunteers {
		_, err := userRepo.User(ctx, volunteer.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, types.ErrUserNotFound) {
			return fmt.Errorf("failed to fetch volunteer %s: %w", volunteer.ID, err)
		}

		newUser := &types.User{
			ID:       volunteer.ID,
			FullName: volunteer.FullName,
			Email:    volunteer.Email,
			Phone:    volunteer.Phone,
			Role:     types.RoleVolunteer,
			Zone:     volunteer.Zone,
			IsActive: true,
		}

		if err := userRepo.Create(ctx, newUser); err != nil {
			return fmt.Errorf("failed to create volunteer %s: %w", volunteer.ID, err)
		}
		seeded++
	}

	if seeded > 0 {
		fmt.Printf("seeded %d volunteers\n", seeded)
	}

	return nil
}
