// Package flash carries one-shot status messages across a redirect in a
// signed, short-lived cookie.
package flash

import (
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

// Levels understood by the templates.
const (
	LevelSuccess = "success"
	LevelError   = "error"
	LevelWarning = "warning"
)

const cookieName = "shelf_flash"

// MaxAge bounds how long a pending message stays valid.
const MaxAge = time.Minute

// Message is one flashed status line.
type Message struct {
	Level string `json:"l"`
	Text  string `json:"t"`
}

func Success(text string) Message { return Message{Level: LevelSuccess, Text: text} }
func Error(text string) Message   { return Message{Level: LevelError, Text: text} }
func Warning(text string) Message { return Message{Level: LevelWarning, Text: text} }

// Codec writes and reads flash cookies authenticated with secret.
// The signed value embeds its creation time, so replaying an old cookie
// after MaxAge yields nothing.
type Codec struct {
	sc *securecookie.SecureCookie
}

// New returns a codec signing with secret.
func New(secret string) *Codec {
	sc := securecookie.New([]byte(secret), nil).
		MaxAge(int(MaxAge.Seconds())).
		SetSerializer(securecookie.JSONEncoder{})
	return &Codec{sc: sc}
}

// Set stores msgs for the next request, replacing any pending ones.
func (c *Codec) Set(w http.ResponseWriter, msgs ...Message) {
	value, err := c.sc.Encode(cookieName, msgs)
	if err != nil {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(MaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns the pending messages and clears the cookie.
// Missing, tampered, expired or malformed cookies yield no messages.
func (c *Codec) Pop(w http.ResponseWriter, r *http.Request) []Message {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	var msgs []Message
	if err := c.sc.Decode(cookieName, cookie.Value, &msgs); err != nil {
		return nil
	}
	return msgs
}
