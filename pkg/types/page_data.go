package types

type NavbarData struct {
	IsAuthenticated bool
	UserID          string
	UserEmail       string
	UserName        string
	Role            Role
}

type NavbarDataSetter interface {
	SetNavbarData(data NavbarData)
}

type BasePageData struct {
	Title  string
	Navbar NavbarData
}

func (d *BasePageData) SetNavbarData(data NavbarData) {
	d.Navbar = data
}

type HomePageData struct {
	BasePageData
	Notice string
	Error  string
}

type SignInPageData struct {
	BasePageData
	Email string
	Error string
}

type SignUpPageData struct {
	BasePageData
	Role        Role
	FullName    string
	Email       string
	Phone       string
	Zone        string
	Error       string
	FieldErrors map[string]string
}

type RequestListPageData struct {
	BasePageData
	Requests []*Request
}

type RequestDetailPageData struct {
	BasePageData
	Request    *Request
	Notice     string
	Error      string
	Statuses   []RequestStatus
	Volunteers []*User
	History    []*RequestEvent
}

type VolunteerDashboardPageData struct {
	BasePageData
	Requests []*Request
}

type SupportOfferPageData struct {
	BasePageData
	Notice string
	Error  string
}

type IntakePageData struct {
	BasePageData
	Zones       []string
	NeedTypes   []string
	Error       string
	FieldErrors map[string]string
}
