package session

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/seplitza/rejuvena-gateway/pkg"
)

const (
	// SourceTelegram marks identities arriving through the Telegram mini-app
	// deep link, SourceTest the built-in demo identity.
	SourceTelegram = "telegram"
	SourceTest     = "test"

	TestUserID    = "test-user-12345"
	TestUserEmail = "test@rejuvena.ru"

	// DeepLinkBase is where generated invitation links point to.
	DeepLinkBase = "https://seplitza.github.io/rejuvena/test-user"

	telegramIDPrefix = "tg-"
)

var (
	ErrMissingUserID       = errors.New("user id is required")
	ErrNotificationConsent = errors.New("notification consent is required")
)

// User is the identity attached to a session. It is built once at login from
// deep link parameters (or the test preset) and never mutated afterwards.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Source    string `json:"source"`
	// NeedsFullAccess is set when the deep link carried too little profile
	// data and the user should be asked to complete it. Recorded at login,
	// before the placeholder name defaults are filled in.
	NeedsFullAccess bool `json:"needsFullAccess"`
}

// UserFromDeepLink builds an identity from the tg_* query parameters carried
// by an invitation deep link. Both the long (tg_user_id) and short (tg_id)
// parameter spellings are accepted.
func UserFromDeepLink(params url.Values) (User, error) {
	userID := params.Get("tg_user_id")
	if userID == "" {
		userID = params.Get("tg_id")
	}
	if userID == "" {
		return User{}, ErrMissingUserID
	}

	username := params.Get("tg_username")
	firstName := params.Get("tg_first_name")
	if firstName == "" {
		firstName = params.Get("first_name")
	}
	lastName := params.Get("tg_last_name")
	if lastName == "" {
		lastName = params.Get("last_name")
	}

	email := fmt.Sprintf("user%s@telegram.user", userID)
	if username != "" {
		email = username + "@telegram.user"
	}

	needsFullAccess := firstName == "" || username == ""
	if firstName == "" {
		firstName = "Пользователь"
	}

	name := firstName
	if lastName != "" {
		name += " " + lastName
	}

	return User{
		ID:              telegramIDPrefix + userID,
		Email:           email,
		Name:            name,
		Username:        username,
		FirstName:       firstName,
		LastName:        lastName,
		Source:          SourceTelegram,
		NeedsFullAccess: needsFullAccess,
	}, nil
}

// TestUser is the fixed demo identity used for trying the app without Telegram.
func TestUser() User {
	return User{
		ID:        TestUserID,
		Email:     TestUserEmail,
		Name:      "Тестовый Пользователь",
		FirstName: "Тестовый",
		LastName:  "Пользователь",
		Source:    SourceTest,
	}
}

// tokenEntropyLen random chars go at the end of every session token so that
// two logins within the same millisecond cannot collide.
const tokenEntropyLen = 10

// NewToken mints a session token: "<source>-token-<unix-ms>-<entropy>". The
// token is an opaque handle for the client, the timestamp only keeps tokens
// sortable by login time.
func NewToken(source string, now time.Time) (string, error) {
	entropy, err := pkg.GenerateRandomString(tokenEntropyLen)
	if err != nil {
		return "", fmt.Errorf("token entropy: %w", err)
	}
	return fmt.Sprintf("%s-token-%d-%s", source, now.UnixMilli(), entropy), nil
}

// BuildDeepLink renders the invitation link for a user. The user must have an
// id and must have consented to notifications before a link can be handed out.
func BuildDeepLink(user User, notificationConsent bool) (string, error) {
	if user.ID == "" {
		return "", ErrMissingUserID
	}
	if !notificationConsent {
		return "", ErrNotificationConsent
	}

	params := url.Values{}
	params.Set("tg_user_id", strings.TrimPrefix(user.ID, telegramIDPrefix))
	if user.Username != "" {
		params.Set("tg_username", user.Username)
	}
	if user.FirstName != "" {
		params.Set("tg_first_name", user.FirstName)
	}
	if user.LastName != "" {
		params.Set("tg_last_name", user.LastName)
	}

	return DeepLinkBase + "?" + params.Encode(), nil
}
