package seed

import (
	"context"
	"fmt"

	"outreach/internal/store"
	"outreach/internal/utils"
	"outreach/pkg/types"

	"github.com/k0kubun/pp/v3"
)

type requestSeed struct {
	Title       string
	NeedType    string
	Zone        string
	Status      types.RequestStatus
	ContactName string
	Phone       string
	Location    string
	Description string
	AssignTo    int // index into fakeVolunteers, -1 for unassigned
}

var fakeRequests = []requestSeed{
	{
		Title:       "Groceries for family of four",
		NeedType:    "food",
		Zone:        "North",
		Status:      types.StatusRequested,
		ContactName: "Maria Lopez",
		Phone:       "+15550200001",
		Location:    "4th & Main",
		Description: "Staples for the week: rice, beans, milk, bread.",
		AssignTo:    -1,
	},
	{
		Title:       "Winter coats, two kids",
		NeedType:    "clothing",
		Zone:        "South",
		Status:      types.StatusAssigned,
		ContactName: "James Carter",
		Phone:       "+15550200002",
		Location:    "Southside community center",
		Description: "Sizes 8 and 12, any color.",
		AssignTo:    1,
	},
	{
		Title:       "Blood pressure medication pickup",
		NeedType:    "medicine",
		Zone:        "Central",
		Status:      types.StatusEnRoute,
		ContactName: "Dorothy King",
		Phone:       "+15550200003",
		Location:    "Elm Street pharmacy",
		Description: "Prescription is paid for, just needs pickup and delivery.",
		AssignTo:    4,
	},
	{
		Title:       "Ride to shelter intake",
		NeedType:    "transport",
		Zone:        "East",
		Status:      types.StatusRequested,
		ContactName: "Samuel Reed",
		Phone:       "+15550200004",
		Location:    "Bus depot, east exit",
		Description: "Needs a ride Thursday morning.",
		AssignTo:    -1,
	},
}

func SeedRequests(ctx context.Context, requestRepo *store.RequestRepository) error {
	volunteerIDs := seedVolunteerIDs()

	for _, sample := range fakeRequests {
		request := &types.Request{
			RequestTitle:       utils.StringPtr(sample.Title),
			Status:             sample.Status,
			NeedType:           sample.NeedType,
			Zone:               sample.Zone,
			Source:             "seed",
			ContactName:        utils.StringPtr(sample.ContactName),
			ContactPhone:       utils.StringPtr(sample.Phone),
			ContactLocation:    utils.StringPtr(sample.Location),
			ContactDescription: utils.StringPtr(sample.Description),
		}

		if sample.AssignTo >= 0 && sample.AssignTo < len(volunteerIDs) {
			request.AssignedTo = utils.StringPtr(volunteerIDs[sample.AssignTo])
		}

		if err := requestRepo.CreateRequest(ctx, request); err != nil {
			return fmt.Errorf("failed to seed request %q: %w", sample.Title, err)
		}

		pp.Println(request.RequestNumber, request.Status)
	}

	return nil
}
