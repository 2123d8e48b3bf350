package share

import (
	"net/url"

	"wahlnetz-service/internal/domain"
)

// DefaultShareText is prefixed to every shared link.
const DefaultShareText = "Schau dir mein Wahlnetz an!"

// Linker builds app deep links and web fallbacks for the supported platforms.
type Linker struct {
	Text    string
	PageURL string
}

// Links returns one link pair per platform for sharedURL, or for the page URL
// when no image URL is available.
func (l Linker) Links(sharedURL string, platforms []domain.SharePlatform) ([]domain.ShareLink, error) {
	target := sharedURL
	if target == "" {
		target = l.PageURL
	}
	text := l.Text
	if text == "" {
		text = DefaultShareText
	}
	message := text
	if target != "" {
		message = text + " " + target
	}

	links := make([]domain.ShareLink, 0, len(platforms))
	for _, p := range platforms {
		var link domain.ShareLink
		switch p {
		case domain.PlatformTwitter:
			link = domain.ShareLink{
				NativeURL: "twitter://post?" + encode("message", message),
				WebURL:    "https://twitter.com/intent/tweet?" + url.Values{"text": {text}, "url": {target}}.Encode(),
			}
		case domain.PlatformFacebook:
			web := "https://www.facebook.com/sharer/sharer.php?" + encode("u", target)
			link = domain.ShareLink{
				NativeURL: "fb://facewebmodal/f?" + encode("href", web),
				WebURL:    web,
			}
		case domain.PlatformWhatsApp:
			link = domain.ShareLink{
				NativeURL: "whatsapp://send?" + encode("text", message),
				WebURL:    "https://api.whatsapp.com/send?" + encode("text", message),
			}
		default:
			return nil, domain.ErrUnsupportedPlatform
		}
		link.Platform = p
		links = append(links, link)
	}
	return links, nil
}

func encode(key, value string) string {
	return url.Values{key: {value}}.Encode()
}
