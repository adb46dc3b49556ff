package data

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"fes-bids/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const soapFrame = `<?xml version="1.0" encoding="UTF-8"?>
<SOAP-ENV:Envelope xmlns:SOAP-ENV="http://schemas.xmlsoap.org/soap/envelope/" xmlns:ns1="http://api.meteologica.com/">
<SOAP-ENV:Body>%s</SOAP-ENV:Body></SOAP-ENV:Envelope>`

func loginOK(token string) string {
	return fmt.Sprintf(soapFrame, `<ns1:loginResponse><return><header><sessionToken>`+token+`</sessionToken><errorCode>OK</errorCode></header></return></ns1:loginResponse>`)
}

func logoutOK() string {
	return fmt.Sprintf(soapFrame, `<ns1:logoutResponse><return><header><errorCode>OK</errorCode></header></return></ns1:logoutResponse>`)
}

func forecastOK(items string) string {
	return fmt.Sprintf(soapFrame, `<ns1:getForecastMultiResponse><return><header><errorCode>OK</errorCode></header><facilitiesForecastData>`+items+`</facilitiesForecastData></return></ns1:getForecastMultiResponse>`)
}

const faultBody = `<?xml version="1.0" encoding="UTF-8"?>
<SOAP-ENV:Envelope xmlns:SOAP-ENV="http://schemas.xmlsoap.org/soap/envelope/"><SOAP-ENV:Body>
<SOAP-ENV:Fault><faultcode>SOAP-ENV:Server</faultcode><faultstring>Invalid session</faultstring></SOAP-ENV:Fault>
</SOAP-ENV:Body></SOAP-ENV:Envelope>`

// fakeVendor answers by SOAPAction. A handler returning status 0 means 200.
type fakeVendor struct {
	mu       sync.Mutex
	calls    map[string]int
	bodies   map[string]string
	handlers map[string]func(n int) (int, string)
}

func newFakeVendor() *fakeVendor {
	return &fakeVendor{
		calls:  map[string]int{},
		bodies: map[string]string{},
		handlers: map[string]func(int) (int, string){
			"login":  func(int) (int, string) { return 0, loginOK("tok-1") },
			"logout": func(int) (int, string) { return 0, logoutOK() },
			"getForecastMulti": func(int) (int, string) {
				return 0, forecastOK(`<item><facilityId>Vayu_GEN_504260</facilityId><forecastData>1738882800~1000.5:1738884600~1500</forecastData></item>` +
					`<item><facilityId>Flogas-solar_0670</facilityId><forecastData></forecastData></item>`)
			},
		},
	}
}

func (f *fakeVendor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	action := r.Header.Get("SOAPAction")
	raw, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.calls[action]++
	n := f.calls[action]
	f.bodies[action] = string(raw)
	h := f.handlers[action]
	f.mu.Unlock()

	if h == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	status, body := h(n)
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (f *fakeVendor) count(action string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[action]
}

func newTestClient(t *testing.T, fv *fakeVendor, cache *ResponseCache) *Client {
	t.Helper()
	srv := httptest.NewServer(fv)
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{
		Endpoint:  srv.URL,
		Username:  "desk",
		Password:  "secret",
		Timeout:   5 * time.Second,
		Retries:   2,
		RetryWait: time.Millisecond,
		Cache:     cache,
	})
}

func testRequest() ForecastRequest {
	fr := DayAheadRequest(model.NewTradingDay(2025, time.February, 7), time.Hour, "prod", "aggregated", 50)
	fr.FacilityIDs = []string{"Flogas-solar_0670", "Vayu_GEN_504260"}
	return fr
}

func TestClientFetch(t *testing.T) {
	fv := newFakeVendor()
	c := newTestClient(t, fv, nil)

	resp, err := c.Fetch(context.Background(), testRequest())
	require.NoError(t, err)
	require.Len(t, resp.Facilities, 2)

	mur := resp.Facilities[0]
	assert.Equal(t, "Vayu_GEN_504260", mur.FacilityID)
	require.Len(t, mur.Points, 2)
	assert.Equal(t, time.Date(2025, time.February, 6, 23, 0, 0, 0, time.UTC), mur.Points[0].Time)
	assert.Equal(t, 1000.5, mur.Points[0].ValueKW)
	assert.Empty(t, resp.Facilities[1].Points)

	assert.Equal(t, 1, fv.count("login"))
	assert.Equal(t, 1, fv.count("logout"))

	body := fv.bodies["getForecastMulti"]
	assert.Contains(t, body, "<sessionToken>tok-1</sessionToken>")
	assert.Contains(t, body, "<fromDate>2025-02-06T22:00:00</fromDate>")
	assert.Contains(t, body, "<toDate>2025-02-07T21:30:00</toDate>")
	assert.Contains(t, body, "<granularity>30</granularity>")
	assert.Contains(t, body, "<item>Vayu_GEN_504260</item>")
	assert.Contains(t, fv.bodies["logout"], "tok-1")
}

func TestClientRetriesServerErrors(t *testing.T) {
	fv := newFakeVendor()
	fv.handlers["login"] = func(n int) (int, string) {
		if n < 3 {
			return http.StatusServiceUnavailable, "busy"
		}
		return 0, loginOK("tok-2")
	}
	c := newTestClient(t, fv, nil)

	_, err := c.Fetch(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, 3, fv.count("login"))
}

func TestClientGivesUpAfterRetries(t *testing.T) {
	fv := newFakeVendor()
	fv.handlers["login"] = func(int) (int, string) { return http.StatusBadGateway, "down" }
	c := newTestClient(t, fv, nil)

	_, err := c.Fetch(context.Background(), testRequest())
	require.Error(t, err)
	assert.True(t, IsVendorError(err))
	assert.Equal(t, 3, fv.count("login"), "first attempt plus two retries")
}

func TestClientPermanentFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler func(int) (int, string)
		code    string
	}{
		{"unauthorized", func(int) (int, string) { return http.StatusUnauthorized, "" }, "UNAUTHORIZED"},
		{"soap fault", func(int) (int, string) { return http.StatusInternalServerError, faultBody }, "SOAP-ENV:Server"},
		{"error code", func(int) (int, string) {
			return 0, fmt.Sprintf(soapFrame, `<ns1:loginResponse><return><header><errorCode>AUTH_FAILED</errorCode><errorMessage>bad password</errorMessage></header></return></ns1:loginResponse>`)
		}, "AUTH_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fv := newFakeVendor()
			fv.handlers["login"] = tt.handler
			c := newTestClient(t, fv, nil)

			_, err := c.Fetch(context.Background(), testRequest())
			var ve *VendorError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.code, ve.Code)
			assert.Equal(t, 1, fv.count("login"))
			assert.Zero(t, fv.count("getForecastMulti"))
		})
	}
}

func TestClientLogsOutWhenForecastFails(t *testing.T) {
	fv := newFakeVendor()
	fv.handlers["getForecastMulti"] = func(int) (int, string) { return http.StatusInternalServerError, faultBody }
	c := newTestClient(t, fv, nil)

	_, err := c.Fetch(context.Background(), testRequest())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "Invalid session"))
	assert.Equal(t, 1, fv.count("logout"))
}

func TestClientCache(t *testing.T) {
	fv := newFakeVendor()
	c := newTestClient(t, fv, NewResponseCache(time.Hour))

	first, err := c.Fetch(context.Background(), testRequest())
	require.NoError(t, err)
	second, err := c.Fetch(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, fv.count("getForecastMulti"))
	assert.Equal(t, 1, fv.count("login"))
}

func TestClientMissingCredentials(t *testing.T) {
	fv := newFakeVendor()
	srv := httptest.NewServer(fv)
	defer srv.Close()
	c := NewClient(ClientConfig{Endpoint: srv.URL})

	_, err := c.Fetch(context.Background(), testRequest())
	var ve *VendorError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "MISSING_CREDENTIALS", ve.Code)
	assert.Zero(t, fv.count("login"))
}

func TestParseForecastData(t *testing.T) {
	pts, err := ParseForecastData("f", ":1738882800~12.5:1738884600:1738886400~ 3 ")
	require.NoError(t, err)
	require.Len(t, pts, 2)
	assert.Equal(t, 12.5, pts[0].ValueKW)
	assert.Equal(t, 3.0, pts[1].ValueKW)
	assert.Equal(t, int64(1738886400), pts[1].Time.Unix())

	_, err = ParseForecastData("f", "1738882800~abc")
	assert.Error(t, err)

	pts, err = ParseForecastData("f", "  ")
	require.NoError(t, err)
	assert.Empty(t, pts)
}
