package fetch

import (
	"encoding/json"
	"fmt"
	"io"

	"appbinhub/internal/services"
)

// Release endpoints serve small documents; cap reads so a misbehaving server
// cannot balloon memory.
const maxJSONBody = 1 << 20

func decodeJSON(r io.Reader, dst any) error {
	data, err := io.ReadAll(io.LimitReader(r, maxJSONBody+1))
	if err != nil {
		return services.Wrap(services.ErrDownload, "probe", "read body", "", err)
	}
	if len(data) > maxJSONBody {
		return services.Wrap(services.ErrValidation, "probe", "read body",
			fmt.Sprintf("response exceeds %d bytes", maxJSONBody), nil)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return services.Wrap(services.ErrValidation, "probe", "decode json", "", err)
	}
	return nil
}
