package share

import (
	"net/url"
	"strings"
)

// Links - готовые ссылки «поделиться»
type Links struct {
	Twitter  string `json:"twitter"`
	Facebook string `json:"facebook"`
	LinkedIn string `json:"linkedin"`
	WhatsApp string `json:"whatsapp"`
	Telegram string `json:"telegram"`
	Email    string `json:"email"`
}

// DefaultHashtags - хэштеги кампании
var DefaultHashtags = []string{"PajamaParty", "NightTrains"}

// ShareLinks строит ссылки для соцсетей с заполненным текстом
func ShareLinks(pageURL, text string, hashtags []string) Links {
	tags := make([]string, 0, len(hashtags))
	for _, h := range hashtags {
		h = strings.TrimPrefix(strings.TrimSpace(h), "#")
		if h != "" {
			tags = append(tags, h)
		}
	}

	twitter := url.Values{}
	twitter.Set("url", pageURL)
	twitter.Set("text", text)
	if len(tags) > 0 {
		twitter.Set("hashtags", strings.Join(tags, ","))
	}

	facebook := url.Values{}
	facebook.Set("u", pageURL)

	linkedin := url.Values{}
	linkedin.Set("url", pageURL)

	message := strings.TrimSpace(text + " " + pageURL)

	whatsapp := url.Values{}
	whatsapp.Set("text", message)

	telegram := url.Values{}
	telegram.Set("url", pageURL)
	telegram.Set("text", text)

	email := "mailto:?subject=" + mailEscape(text) + "&body=" + mailEscape(message)

	return Links{
		Twitter:  "https://twitter.com/intent/tweet?" + twitter.Encode(),
		Facebook: "https://www.facebook.com/sharer/sharer.php?" + facebook.Encode(),
		LinkedIn: "https://www.linkedin.com/sharing/share-offsite/?" + linkedin.Encode(),
		WhatsApp: "https://wa.me/?" + whatsapp.Encode(),
		Telegram: "https://t.me/share/url?" + telegram.Encode(),
		Email:    email,
	}
}

// mailEscape - как QueryEscape, но пробел кодируется %20: почтовые клиенты не понимают +
func mailEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
