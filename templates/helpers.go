package templates

import (
	"embed"
	"net/http"
	"strconv"

	"ml-backend-settings/pkg/mlsettings"
)

// Static holds the stylesheet and the modal script served under /static
//
//go:embed static
var Static embed.FS

func cardID(card *mlsettings.Card) string {
	return "ml-backend-" + strconv.Itoa(card.Backend().ID)
}

func backendPath(id int, action string) string {
	return "/ml/" + strconv.Itoa(id) + "/" + action
}

func statusText(status int) string {
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "error"
}
