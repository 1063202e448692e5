package client

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// newLocalID arma el id de un registro local: millis en base36 + sufijo
// aleatorio. Dos ids del mismo milisegundo difieren por el sufijo.
func newLocalID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return strconv.FormatInt(now.UnixMilli(), 36) + suffix
}
