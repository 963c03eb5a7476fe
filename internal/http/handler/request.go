package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/apperr"
)

const MsgInvalidBody = "Invalid request body."

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return apperr.New(apperr.KindValidationFailed, http.StatusRequestEntityTooLarge, "Request body too large.").Wrap(err)
		}
		return apperr.ValidationMessage(MsgInvalidBody).Wrap(err)
	}
	return nil
}

// pageParam reads ?page=N. Missing, malformed or non-positive values mean
// the first page.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
