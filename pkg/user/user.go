package user

const (
	UnknownName    = "Unknown User"
	FallbackAvatar = "https://upload.wikimedia.org/wikipedia/commons/8/89/Portrait_Placeholder.png"
)

// User is a row of the users table. The feed never mutates it.
type User struct {
	Id               string   `json:"id"`
	FullName         string   `json:"fullName"`
	Email            string   `json:"-"`
	Password         []byte   `json:"-"`
	ProfilePic       string   `json:"profilePic"`
	Bio              string   `json:"bio"`
	NativeLanguage   string   `json:"nativeLanguage"`
	LearningLanguage string   `json:"learningLanguage"`
	Location         string   `json:"location"`
	Interests        []string `json:"interests"`
}

// Author is the display projection attached to posts and comments.
type Author struct {
	Id         string `json:"id"`
	FullName   string `json:"fullName"`
	ProfilePic string `json:"profilePic"`
}

func (u *User) Author() *Author {
	a := &Author{Id: u.Id, FullName: u.FullName, ProfilePic: u.ProfilePic}
	if a.FullName == "" {
		a.FullName = UnknownName
	}
	if a.ProfilePic == "" {
		a.ProfilePic = FallbackAvatar
	}
	return a
}

// UnknownAuthor stands in for ids the directory could not resolve.
func UnknownAuthor(id string) *Author {
	return &Author{Id: id, FullName: UnknownName, ProfilePic: FallbackAvatar}
}

// Filter narrows a user search. Empty fields do not constrain the result.
type Filter struct {
	Keyword        string
	ExcludeId      string
	Location       string
	NativeLanguage string
	Interests      []string
	Limit          int
}
