package data

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fes-bids/internal/model"
	"fes-bids/internal/pkg/logger"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
)

const (
	DefaultEndpoint  = "https://api.meteologica.com/api/MeteologicaDataExchangeService.php"
	DefaultNamespace = "http://api.meteologica.com/"

	soapEnvelopeNS = "http://schemas.xmlsoap.org/soap/envelope/"
	isoNoZone      = "2006-01-02T15:04:05"
)

// ClientConfig carries everything NewClient needs. Credentials are never
// held in package state.
type ClientConfig struct {
	Endpoint  string
	Namespace string
	Username  string
	Password  string
	Timeout   time.Duration
	Retries   int
	RetryWait time.Duration
	Cache     *ResponseCache
}

// Client talks to the forecast vendor's SOAP service.
type Client struct {
	endpoint  string
	namespace string
	username  string
	password  string
	retries   int
	retryWait time.Duration
	cache     *ResponseCache
	http      *resty.Client
}

// Session is one authenticated vendor session. End it with Client.Logout.
type Session struct {
	Token string
}

// ForecastRequest selects a window of vendor forecasts.
type ForecastRequest struct {
	From        time.Time
	To          time.Time
	VariableID  string
	PredictorID string
	Granularity int
	Percentile  int
	FacilityIDs []string
}

// VendorError is a failure reported by the vendor, either as an HTTP status
// or as a SOAP fault / error code.
type VendorError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *VendorError) Error() string {
	return e.Message
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.RetryWait == 0 {
		cfg.RetryWait = 5 * time.Second
	}
	return &Client{
		endpoint:  cfg.Endpoint,
		namespace: cfg.Namespace,
		username:  cfg.Username,
		password:  cfg.Password,
		retries:   cfg.Retries,
		retryWait: cfg.RetryWait,
		cache:     cfg.Cache,
		http: resty.New().
			SetTimeout(cfg.Timeout).
			SetHeader("Content-Type", "text/xml; charset=utf-8"),
	}
}

// DayAheadRequest covers the 48 periods of day, 23:00 D-1 to 22:30 D, in
// vendor time. shift is the offset the normalizer adds to vendor instants,
// so the window is taken back by the same amount.
func DayAheadRequest(day model.TradingDay, shift time.Duration, variableID, predictorID string, percentile int) ForecastRequest {
	return ForecastRequest{
		From:        day.Start().Add(-shift),
		To:          day.End().Add(-shift),
		VariableID:  variableID,
		PredictorID: predictorID,
		Granularity: int(model.PeriodLength / time.Minute),
		Percentile:  percentile,
	}
}

func (c *Client) Login(ctx context.Context) (*Session, error) {
	if c.username == "" || c.password == "" {
		return nil, &VendorError{Code: "MISSING_CREDENTIALS", Message: "vendor username and password are required"}
	}
	req := loginReq{NS: c.namespace}
	req.Request.Username = c.username
	req.Request.Password = c.password

	var resp loginResp
	if err := c.call(ctx, "login", req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Return.Header.err(); err != nil {
		return nil, err
	}
	if resp.Return.Header.SessionToken == "" {
		return nil, &VendorError{Code: "NO_SESSION", Message: "login returned no session token"}
	}
	logger.Debugf(ctx, "[Meteologica] Session opened")
	return &Session{Token: resp.Return.Header.SessionToken}, nil
}

func (c *Client) Logout(ctx context.Context, s *Session) error {
	if s == nil || s.Token == "" {
		return nil
	}
	req := logoutReq{NS: c.namespace}
	req.Request.Header.SessionToken = s.Token

	var resp headerResp
	if err := c.call(ctx, "logout", req, &resp); err != nil {
		return err
	}
	s.Token = ""
	return resp.Return.Header.err()
}

// Forecast fetches every facility's series for the request window.
func (c *Client) Forecast(ctx context.Context, s *Session, fr ForecastRequest) (*model.VendorForecast, error) {
	if s == nil || s.Token == "" {
		return nil, &VendorError{Code: "NO_SESSION", Message: "forecast requires an open session"}
	}
	if fr.From.IsZero() || fr.To.IsZero() {
		return nil, fmt.Errorf("forecast window start and end are required")
	}
	if fr.From.After(fr.To) {
		return nil, fmt.Errorf("forecast window start must be before end")
	}

	cacheKey := GenerateCacheKey(fr)
	if cached, found := c.cache.Get(cacheKey); found {
		logger.Infof(ctx, "[Meteologica] Cache hit: %d facilities (from=%s, to=%s)",
			len(cached.Facilities), fr.From.Format(isoNoZone), fr.To.Format(isoNoZone))
		return cached, nil
	}

	req := forecastReq{NS: c.namespace}
	r := &req.Request
	r.Header.SessionToken = s.Token
	r.VariableID = fr.VariableID
	r.PredictorID = fr.PredictorID
	r.FromDate = fr.From.Format(isoNoZone)
	r.ToDate = fr.To.Format(isoNoZone)
	r.Granularity = strconv.Itoa(fr.Granularity)
	r.Percentiles = strconv.Itoa(fr.Percentile)
	r.FacilitiesID.Items = fr.FacilityIDs

	logger.Infof(ctx, "[Meteologica] Request: getForecastMulti (variable=%s, predictor=%s, from=%s, to=%s)",
		r.VariableID, r.PredictorID, r.FromDate, r.ToDate)

	var resp forecastResp
	if err := c.call(ctx, "getForecastMulti", req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Return.Header.err(); err != nil {
		return nil, err
	}

	out := &model.VendorForecast{RequestedAt: time.Now().UTC()}
	for _, item := range resp.Return.Facilities.Items {
		points, err := ParseForecastData(item.FacilityID, item.ForecastData)
		if err != nil {
			return nil, err
		}
		out.Facilities = append(out.Facilities, model.FacilityForecast{FacilityID: item.FacilityID, Points: points})
	}
	logger.Infof(ctx, "[Meteologica] Success: received %d facilities", len(out.Facilities))

	c.cache.Set(cacheKey, out)
	return out, nil
}

// Fetch runs a full login, forecast, logout cycle. The session is always
// closed, even when the forecast call fails.
func (c *Client) Fetch(ctx context.Context, fr ForecastRequest) (resp *model.VendorForecast, err error) {
	if cached, found := c.cache.Get(GenerateCacheKey(fr)); found {
		return cached, nil
	}
	s, err := c.Login(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if lerr := c.Logout(ctx, s); lerr != nil {
			logger.Warnf(ctx, "[Meteologica] Logout failed: %v", lerr)
		}
	}()
	return c.Forecast(ctx, s, fr)
}

// ParseForecastData decodes the vendor's "epoch~value:epoch~value" series.
// A leading separator is tolerated and fragments without a value are skipped.
func ParseForecastData(facilityID, raw string) ([]model.ForecastPoint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ":")
	out := make([]model.ForecastPoint, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		fields := strings.Split(part, "~")
		if len(fields) < 2 {
			continue
		}
		ts, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("facility %s: bad timestamp %q: %w", facilityID, fields[0], err)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("facility %s: bad value %q: %w", facilityID, fields[1], err)
		}
		out = append(out, model.ForecastPoint{Time: time.Unix(ts, 0).UTC(), ValueKW: v})
	}
	return out, nil
}

// call posts one SOAP operation, retrying transport and 5xx failures.
func (c *Client) call(ctx context.Context, action string, body, out interface{}) error {
	payload, err := marshalEnvelope(body)
	if err != nil {
		return fmt.Errorf("encode %s: %w", action, err)
	}

	op := func() error {
		start := time.Now()
		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("SOAPAction", action).
			SetBody(payload).
			Post(c.endpoint)
		duration := time.Since(start)
		if err != nil {
			logger.Warnf(ctx, "[Meteologica] %s failed: %v (duration: %v)", action, err, duration)
			return fmt.Errorf("%s: %w", action, err)
		}
		logger.Debugf(ctx, "[Meteologica] %s: %s (duration: %v)", action, resp.Status(), duration)
		return classify(action, resp.StatusCode(), resp.Status(), resp.Body(), out)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryWait), uint64(c.retries)), ctx)
	return backoff.Retry(op, b)
}

func classify(action string, status int, statusText string, body []byte, out interface{}) error {
	// Faults come back as 500 with a SOAP body, so look for one first.
	var env faultEnvelope
	if xml.Unmarshal(body, &env) == nil && env.Body.Fault != nil {
		f := env.Body.Fault
		return backoff.Permanent(&VendorError{
			StatusCode: status,
			Code:       strings.TrimSpace(f.Code),
			Message:    fmt.Sprintf("%s fault: %s", action, strings.TrimSpace(f.String)),
		})
	}

	switch {
	case status == http.StatusOK:
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return backoff.Permanent(&VendorError{StatusCode: status, Code: "UNAUTHORIZED", Message: "vendor rejected credentials"})
	case status >= 500:
		return &VendorError{StatusCode: status, Code: "API_ERROR", Message: fmt.Sprintf("%s returned status %d: %s", action, status, statusText)}
	default:
		return backoff.Permanent(&VendorError{StatusCode: status, Code: "API_ERROR", Message: fmt.Sprintf("%s returned status %d: %s", action, status, statusText)})
	}

	if err := xml.Unmarshal(body, out); err != nil {
		return backoff.Permanent(fmt.Errorf("decode %s response: %w", action, err))
	}
	return nil
}

// IsVendorError reports whether err came from the vendor.
func IsVendorError(err error) bool {
	var ve *VendorError
	return errors.As(err, &ve)
}

func marshalEnvelope(body interface{}) ([]byte, error) {
	env := envelope{NS: soapEnvelopeNS, Body: envelopeBody{Content: body}}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(env); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type envelope struct {
	XMLName xml.Name     `xml:"soapenv:Envelope"`
	NS      string       `xml:"xmlns:soapenv,attr"`
	Body    envelopeBody `xml:"soapenv:Body"`
}

type envelopeBody struct {
	Content interface{}
}

type reqHeader struct {
	SessionToken string `xml:"sessionToken"`
}

type loginReq struct {
	XMLName xml.Name `xml:"ns:login"`
	NS      string   `xml:"xmlns:ns,attr"`
	Request struct {
		Username string `xml:"username"`
		Password string `xml:"password"`
	} `xml:"request"`
}

type logoutReq struct {
	XMLName xml.Name `xml:"ns:logout"`
	NS      string   `xml:"xmlns:ns,attr"`
	Request struct {
		Header reqHeader `xml:"header"`
	} `xml:"request"`
}

type forecastReq struct {
	XMLName xml.Name `xml:"ns:getForecastMulti"`
	NS      string   `xml:"xmlns:ns,attr"`
	Request struct {
		Header       reqHeader `xml:"header"`
		VariableID   string    `xml:"variableId"`
		PredictorID  string    `xml:"predictorId"`
		FromDate     string    `xml:"fromDate"`
		ToDate       string    `xml:"toDate"`
		Granularity  string    `xml:"granularity"`
		Percentiles  string    `xml:"percentiles"`
		FacilitiesID struct {
			Items []string `xml:"item"`
		} `xml:"facilitiesId"`
	} `xml:"request"`
}

type respHeader struct {
	SessionToken string `xml:"sessionToken"`
	ErrorCode    string `xml:"errorCode"`
	ErrorMessage string `xml:"errorMessage"`
}

func (h respHeader) err() error {
	code := strings.TrimSpace(h.ErrorCode)
	if code == "" || strings.EqualFold(code, "OK") || code == "0" {
		return nil
	}
	msg := strings.TrimSpace(h.ErrorMessage)
	if msg == "" {
		msg = "vendor returned error code " + code
	}
	return &VendorError{StatusCode: http.StatusOK, Code: code, Message: msg}
}

type loginResp struct {
	Return struct {
		Header respHeader `xml:"header"`
	} `xml:"Body>loginResponse>return"`
}

type headerResp struct {
	Return struct {
		Header respHeader `xml:"header"`
	} `xml:"Body>logoutResponse>return"`
}

type forecastResp struct {
	Return struct {
		Header     respHeader `xml:"header"`
		Facilities struct {
			Items []struct {
				FacilityID   string `xml:"facilityId"`
				ForecastData string `xml:"forecastData"`
			} `xml:"item"`
		} `xml:"facilitiesForecastData"`
	} `xml:"Body>getForecastMultiResponse>return"`
}

type faultEnvelope struct {
	Body struct {
		Fault *struct {
			Code   string `xml:"faultcode"`
			String string `xml:"faultstring"`
		} `xml:"Fault"`
	} `xml:"Body"`
}
