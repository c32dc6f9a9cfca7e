package i18n

import (
	"fmt"
	"net/http"
)

type Language string

const (
	English  Language = "en"
	Romanian Language = "ro"
)

// Message keys for user-visible text.
const (
	LoginFailed   = "login_failed"
	BadRequest    = "bad_request"
	Forbidden     = "forbidden"
	NotFound      = "not_found"
	ServerError   = "server_error"
	RepliesClosed = "replies_closed"
)

// Message keys for page chrome and forms.
const (
	NavHome     = "nav_home"
	NavAbout    = "nav_about"
	NavTravel   = "nav_travel"
	NavRegistry = "nav_registry"
	NavRSVP     = "nav_rsvp"
	NavLogout   = "nav_logout"

	TitleHome      = "title_home"
	TitleAbout     = "title_about"
	TitleRegistry  = "title_registry"
	TitleTravel    = "title_travel"
	TitleLogin     = "title_login"
	TitleDashboard = "title_dashboard"
	TitleRSVP      = "title_rsvp"
	TitleError     = "title_error"

	HomeHeading     = "home_heading"
	HomeBody        = "home_body"
	AboutHeading    = "about_heading"
	AboutBody       = "about_body"
	RegistryHeading = "registry_heading"
	RegistryBody    = "registry_body"
	TravelHeading   = "travel_heading"
	TravelBody      = "travel_body"

	LoginHeading = "login_heading"
	FirstName    = "first_name"
	LastName     = "last_name"
	LoginButton  = "login_button"

	Welcome         = "welcome"
	ColumnGuest     = "column_guest"
	ColumnReply     = "column_reply"
	ChildTag        = "child_tag"
	ReplyLink       = "reply_link"
	StatusMeal      = "status_meal"
	StatusAttending = "status_attending"
	StatusDeclined  = "status_declined"
	StatusNone      = "status_none"

	RSVPHeading    = "rsvp_heading"
	AttendQuestion = "attend_question"
	AttendYes      = "attend_yes"
	AttendNo       = "attend_no"
	MealLabel      = "meal_label"
	MealMeat       = "meal_meat"
	MealFish       = "meal_fish"
	MealVeggie     = "meal_veggie"
	MealSkip       = "meal_skip"
	MessageLabel   = "message_label"
	SendButton     = "send_button"
)

var catalog = map[Language]map[string]string{
	English: {
		LoginFailed:   "Hmm, we couldn't find a login for: %s",
		BadRequest:    "Something went wrong...",
		Forbidden:     "You don't have access to that!",
		NotFound:      "Page not found :(",
		ServerError:   "Something went wrong on our end, please try again later.",
		RepliesClosed: "RSVP replies are closed.",

		NavHome:     "Home",
		NavAbout:    "About",
		NavTravel:   "Travel",
		NavRegistry: "Registry",
		NavRSVP:     "RSVP",
		NavLogout:   "Logout",

		TitleHome:      "Home",
		TitleAbout:     "About",
		TitleRegistry:  "Registry",
		TitleTravel:    "Travel",
		TitleLogin:     "Login",
		TitleDashboard: "Dashboard",
		TitleRSVP:      "RSVP",
		TitleError:     "Error",

		HomeHeading:     "We're getting married!",
		HomeBody:        "We can't wait to celebrate with you. Log in to RSVP for your party.",
		AboutHeading:    "About us",
		AboutBody:       "How we met, and everything since.",
		RegistryHeading: "Registry",
		RegistryBody:    "Your presence is the best present.",
		TravelHeading:   "Travel",
		TravelBody:      "Directions, parking and places to stay.",

		LoginHeading: "RSVP",
		FirstName:    "First name",
		LastName:     "Last name",
		LoginButton:  "Log in",

		Welcome:         "Welcome, %s!",
		ColumnGuest:     "Guest",
		ColumnReply:     "Reply",
		ChildTag:        "(child)",
		ReplyLink:       "RSVP",
		StatusMeal:      "Attending (%s)",
		StatusAttending: "Attending",
		StatusDeclined:  "Not attending",
		StatusNone:      "No reply yet",

		RSVPHeading:    "RSVP for %s",
		AttendQuestion: "Will you attend?",
		AttendYes:      "Yes",
		AttendNo:       "No",
		MealLabel:      "Meal",
		MealMeat:       "Meat",
		MealFish:       "Fish",
		MealVeggie:     "Veggie",
		MealSkip:       "No meal",
		MessageLabel:   "Message",
		SendButton:     "Send",
	},
	Romanian: {
		LoginFailed:   "Hmm, nu am găsit o invitație pentru: %s",
		BadRequest:    "Ceva nu a mers bine...",
		Forbidden:     "Nu ai acces la această pagină!",
		NotFound:      "Pagina nu a fost găsită :(",
		ServerError:   "A apărut o eroare, te rugăm să încerci mai târziu.",
		RepliesClosed: "Confirmările nu mai sunt acceptate.",

		NavHome:     "Acasă",
		NavAbout:    "Despre noi",
		NavTravel:   "Călătorie",
		NavRegistry: "Cadouri",
		NavRSVP:     "Confirmare",
		NavLogout:   "Ieșire",

		TitleHome:      "Acasă",
		TitleAbout:     "Despre noi",
		TitleRegistry:  "Cadouri",
		TitleTravel:    "Călătorie",
		TitleLogin:     "Autentificare",
		TitleDashboard: "Invitația ta",
		TitleRSVP:      "Confirmare",
		TitleError:     "Eroare",

		HomeHeading:     "Ne căsătorim!",
		HomeBody:        "Abia așteptăm să sărbătorim împreună. Autentifică-te pentru a confirma prezența.",
		AboutHeading:    "Despre noi",
		AboutBody:       "Cum ne-am cunoscut și tot ce a urmat.",
		RegistryHeading: "Cadouri",
		RegistryBody:    "Prezența voastră este cel mai frumos cadou.",
		TravelHeading:   "Călătorie",
		TravelBody:      "Indicații, parcare și cazare.",

		LoginHeading: "Confirmare",
		FirstName:    "Prenume",
		LastName:     "Nume",
		LoginButton:  "Intră",

		Welcome:         "Bine ai venit, %s!",
		ColumnGuest:     "Invitat",
		ColumnReply:     "Răspuns",
		ChildTag:        "(copil)",
		ReplyLink:       "Confirmă",
		StatusMeal:      "Participă (%s)",
		StatusAttending: "Participă",
		StatusDeclined:  "Nu participă",
		StatusNone:      "Fără răspuns",

		RSVPHeading:    "Confirmare pentru %s",
		AttendQuestion: "Vei participa?",
		AttendYes:      "Da",
		AttendNo:       "Nu",
		MealLabel:      "Meniu",
		MealMeat:       "Carne",
		MealFish:       "Pește",
		MealVeggie:     "Vegetarian",
		MealSkip:       "Fără meniu",
		MessageLabel:   "Mesaj",
		SendButton:     "Trimite",
	},
}

// GetLanguageFromRequest extracts language from request (query param or cookie)
func GetLanguageFromRequest(r *http.Request) Language {
	if lang, ok := parse(r.URL.Query().Get("lang")); ok {
		return lang
	}

	if cookie, err := r.Cookie("lang"); err == nil {
		if lang, ok := parse(cookie.Value); ok {
			return lang
		}
	}

	return English
}

// T returns the message for key in lang, formatted with args. Unknown
// languages fall back to English.
func T(lang Language, key string, args ...any) string {
	messages, ok := catalog[lang]
	if !ok {
		messages = catalog[English]
	}
	msg, ok := messages[key]
	if !ok {
		msg = catalog[English][key]
	}
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

func parse(s string) (Language, bool) {
	switch Language(s) {
	case English, Romanian:
		return Language(s), true
	}
	return "", false
}
