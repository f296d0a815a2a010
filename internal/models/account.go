package models

// Account is a user profile record. Accounts are identified by the
// combination of normalized phone number and date of birth; they carry no
// server-issued ID.
type Account struct {
	FirstName   string `json:"firstName"`
	MiddleName  string `json:"middleName"`
	LastName    string `json:"lastName"`
	Gender      string `json:"gender,omitempty"`
	FullName    string `json:"fullName"`
	DOB         string `json:"dob"`
	HotiNo      string `json:"hotiNo"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
	PhotoURI    string `json:"photoUri"`
}

// LeaderboardEntry is one ranked row for the leaderboard display
type LeaderboardEntry struct {
	Name          string `json:"name"`
	TotalPoints   int    `json:"totalPoints"`
	IsCurrentUser bool   `json:"isCurrentUser"`
}
