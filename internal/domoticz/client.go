package domoticz

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/gray-logic-mysensors/internal/infrastructure/config"
)

// Domoticz API constants.
const (
	// apiPath is the single JSON endpoint of the Domoticz API.
	apiPath = "/json.htm"

	// statusOK is the "status" value of a successful call.
	statusOK = "OK"

	// lastUpdateLayout is the format of the LastUpdate field, in the
	// controller's local time zone.
	lastUpdateLayout = "2006-01-02 15:04:05"

	// maxResponseSize bounds the body read from the controller.
	maxResponseSize = 4 << 20
)

// SwitchStatus is one entry of the used light/switch device listing.
type SwitchStatus struct {
	// ID is the Domoticz device idx.
	ID int

	// Data is the textual state, e.g. "On", "Off", "Set Level: 40 %".
	Data string

	// Level is the dimmer level in percent.
	Level int

	// LastUpdate is the controller's last change time, zero if absent.
	LastUpdate time.Time
}

// Client talks to the Domoticz JSON API.
//
// Every call is a single GET to /json.htm with a bounded timeout. Failures
// are reported as ErrUnavailable (transport) or ErrBadResponse (payload);
// there are no retries.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	hardwareID int
	username   string
	password   string
	httpClient *http.Client
	location   *time.Location
}

// NewClient creates a Domoticz client.
//
// Parameters:
//   - cfg: Domoticz configuration (URL, hardware id, timeout, credentials)
//
// Returns:
//   - *Client: Ready client
//   - error: If the URL is not absolute
func NewClient(cfg config.DomoticzConfig) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing domoticz url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("domoticz url %q is not absolute", cfg.URL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second //nolint:mnd // fallback HTTP timeout
	}

	return &Client{
		baseURL:    u,
		hardwareID: cfg.HardwareID,
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: timeout},
		location:   time.Local,
	}, nil
}

// HardwareID returns the hardware idx virtual sensors are created on.
func (c *Client) HardwareID() int {
	return c.hardwareID
}

// deviceEntry is the subset of a device listing entry the bridge reads.
type deviceEntry struct {
	Idx        flexInt `json:"idx"`
	HardwareID flexInt `json:"HardwareID"`
	Data       string  `json:"Data"`
	Level      flexInt `json:"Level"`
	LastUpdate string  `json:"LastUpdate"`
}

// response is the envelope of every Domoticz answer.
type response struct {
	Status string        `json:"status"`
	Title  string        `json:"title"`
	Result []deviceEntry `json:"result"`
}

// DeviceValue returns the Data field of one device.
//
// Parameters:
//   - ctx: Context for cancellation
//   - deviceID: Domoticz device idx
//
// Returns:
//   - string: Current textual value of the device
//   - error: ErrUnavailable, ErrBadResponse or ErrDeviceNotFound
func (c *Client) DeviceValue(ctx context.Context, deviceID int) (string, error) {
	resp, err := c.call(ctx, url.Values{
		"type": {"devices"},
		"rid":  {strconv.Itoa(deviceID)},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Result) == 0 {
		return "", fmt.Errorf("%w: idx %d", ErrDeviceNotFound, deviceID)
	}
	return resp.Result[0].Data, nil
}

// Switches lists the used light and switch devices.
//
// Entries whose LastUpdate cannot be parsed are returned with a zero
// LastUpdate, so they never look newer than a registry record.
func (c *Client) Switches(ctx context.Context) ([]SwitchStatus, error) {
	resp, err := c.call(ctx, url.Values{
		"type":   {"devices"},
		"filter": {"light"},
		"used":   {"true"},
	})
	if err != nil {
		return nil, err
	}

	switches := make([]SwitchStatus, 0, len(resp.Result))
	for _, e := range resp.Result {
		s := SwitchStatus{
			ID:    int(e.Idx),
			Data:  e.Data,
			Level: int(e.Level),
		}
		if t, err := time.ParseInLocation(lastUpdateLayout, e.LastUpdate, c.location); err == nil {
			s.LastUpdate = t
		}
		switches = append(switches, s)
	}
	return switches, nil
}

// Send performs an update query built by BuildUpdate.
//
// Returns:
//   - error: ErrUnavailable, or ErrBadResponse when the status is not OK
func (c *Client) Send(ctx context.Context, query url.Values) error {
	_, err := c.call(ctx, query)
	return err
}

// CreateDevice creates a virtual sensor on the configured dummy hardware and
// returns its idx.
//
// Domoticz does not return the new idx, so the unused devices are listed in
// id order and the last entry is accepted when it belongs to the configured
// hardware. Any other outcome is ErrCreateUnconfirmed.
//
// Parameters:
//   - ctx: Context for cancellation
//   - deviceType: Virtual sensor type to create
//
// Returns:
//   - int: Idx of the new device
//   - error: ErrUnsupportedDeviceType, ErrUnavailable, ErrBadResponse or
//     ErrCreateUnconfirmed
func (c *Client) CreateDevice(ctx context.Context, deviceType DeviceType) (int, error) {
	if !deviceType.Known() {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedDeviceType, int(deviceType))
	}

	if _, err := c.call(ctx, url.Values{
		"type":       {"createvirtualsensor"},
		"idx":        {strconv.Itoa(c.hardwareID)},
		"sensortype": {strconv.Itoa(int(deviceType))},
	}); err != nil {
		return 0, fmt.Errorf("creating %s: %w", deviceType, err)
	}

	resp, err := c.call(ctx, url.Values{
		"type":   {"devices"},
		"filter": {"all"},
		"used":   {"false"},
		"order":  {"ID"},
	})
	if err != nil {
		return 0, fmt.Errorf("listing new devices: %w", err)
	}
	if len(resp.Result) == 0 {
		return 0, fmt.Errorf("%w: no unused devices listed", ErrCreateUnconfirmed)
	}

	last := resp.Result[len(resp.Result)-1]
	if int(last.HardwareID) != c.hardwareID || last.Idx <= 0 {
		return 0, fmt.Errorf("%w: last device idx %d is on hardware %d",
			ErrCreateUnconfirmed, int(last.Idx), int(last.HardwareID))
	}
	return int(last.Idx), nil
}

// HealthCheck verifies the controller answers API calls.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.call(ctx, url.Values{
		"type":  {"command"},
		"param": {"getversion"},
	})
	return err
}

// call performs one API request and decodes the envelope.
func (c *Client) call(ctx context.Context, query url.Values) (*response, error) {
	u := *c.baseURL
	u.Path += apiPath
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer httpResp.Body.Close() //nolint:errcheck // read-only body

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrUnavailable, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: http %d", ErrBadResponse, httpResp.StatusCode)
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	if resp.Status != statusOK {
		return nil, fmt.Errorf("%w: status %q", ErrBadResponse, resp.Status)
	}
	return &resp, nil
}

// flexInt decodes integers that Domoticz sends either as JSON numbers or as
// numeric strings ("idx": "12").
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		var num float64
		if jsonErr := json.Unmarshal(data, &num); jsonErr != nil {
			return errors.Join(err, jsonErr)
		}
		n = int(num)
	}
	*f = flexInt(n)
	return nil
}
