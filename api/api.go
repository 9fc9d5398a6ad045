package api

const (
	LoginEndpoint    = "/api/auth/login"
	SignupEndpoint   = "/api/auth/signup"
	ProblemsEndpoint = "/api/problems"
	UpvoteEndpoint   = "/api/problems/:id/upvote"
	MapEndpoint      = "/api/problems/map"
	UploadEndpoint   = "/api/upload"
	HealthEndpoint   = "/health"
	UploadsPrefix    = "/uploads"
)

// Category of a reported problem.
type Category string

const (
	CategoryInfrastructure Category = "infrastructure"
	CategorySanitation     Category = "sanitation"
	CategorySafety         Category = "safety"
	CategoryOther          Category = "other"
)

// Status of a reported problem. No endpoint transitions it; resolution
// workflows set it out of band.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in-progress"
	StatusResolved   Status = "resolved"
)

type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}

type Problem struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Location    Location `json:"location"`
	Upvotes     int      `json:"upvotes"`
	Status      Status   `json:"status"`
	CreatedAt   string   `json:"createdAt"` // RFC 3339 UTC.
	ReportedBy  string   `json:"reportedBy,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	VideoURL    string   `json:"videoUrl,omitempty"`
	AudioURL    string   `json:"audioUrl,omitempty"`
}

// ProblemInput carries the caller-supplied part of a problem. The server
// assigns id, createdAt, upvotes and status.
type ProblemInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Location    Location `json:"location"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	VideoURL    string   `json:"videoUrl,omitempty"`
	AudioURL    string   `json:"audioUrl,omitempty"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserPublic struct {
	Username string `json:"username"`
}

// AuthResponse keeps the username field the web client stores locally; the
// token is for callers that want server-verified identity.
type AuthResponse struct {
	Username string `json:"username"`
	Token    string `json:"token,omitempty"`
}

type UploadResponse struct {
	URL string `json:"url"`
}

type ViewPort struct {
	LatMin float64 `json:"latmin"`
	LonMin float64 `json:"lonmin"`
	LatMax float64 `json:"latmax"`
	LonMax float64 `json:"lonmax"`
}

type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type MapArgs struct {
	VPort  ViewPort `json:"vport"`
	Center Point    `json:"center"`
}

// MapMarker is one rendered map pin. Count > 1 means an aggregated cluster;
// ProblemID is only meaningful for singleton markers.
type MapMarker struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Count     int64   `json:"count"`
	ProblemID string  `json:"problem_id,omitempty"`
	Upvotes   int     `json:"upvotes,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
