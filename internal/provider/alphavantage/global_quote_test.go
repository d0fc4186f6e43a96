package alphavantage_test

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"pharmadash/internal/company"
	"pharmadash/internal/provider"
	"pharmadash/internal/provider/alphavantage"
)

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Request:    &http.Request{Method: http.MethodGet},
	}
}

func TestGlobalQuote(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock HTTP client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, http.MethodGet, req.Method)
			require.Equal(t, "test-key", req.URL.Query().Get("apikey"))
			require.Equal(t, "GLOBAL_QUOTE", req.URL.Query().Get("function"))
			require.Equal(t, "MRK", req.URL.Query().Get("symbol"))
			require.Equal(t, "/query", req.URL.Path)

			return jsonResponse(http.StatusOK, `{"Global Quote":{"01. symbol":"MRK","05. price":"121.3400"}}`), nil
		}).
		Times(1)

	// Arrange: setup a new client
	client := alphavantage.NewClient("test-key", alphavantage.WithHTTPClient(httpClient))

	// Act: call Price
	price, err := client.Price(t.Context(), company.Company{Name: "Merck", Symbol: "MRK"})

	// Assert: the price is parsed from the string field
	require.NoError(t, err)
	require.InDelta(t, 121.34, price, 1e-9)
}

func TestGlobalQuote_NoKey(t *testing.T) {
	t.Parallel()

	// Arrange: the HTTP client must never be reached
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().Do(gomock.Any()).Times(0)

	client := alphavantage.NewClient("", alphavantage.WithHTTPClient(httpClient))
	require.False(t, client.Configured())

	// Act
	_, err := client.GlobalQuote(t.Context(), "MRK")

	// Assert
	require.ErrorIs(t, err, provider.ErrNotConfigured)
}

func TestGlobalQuote_Failures(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		resp *http.Response
		err  error
	}{
		"transport error":  {err: fmt.Errorf("connection refused")},
		"server error":     {resp: jsonResponse(http.StatusBadGateway, "")},
		"invalid json":     {resp: jsonResponse(http.StatusOK, "not json")},
		"missing price":    {resp: jsonResponse(http.StatusOK, `{"Global Quote":{}}`)},
		"non numeric":      {resp: jsonResponse(http.StatusOK, `{"Global Quote":{"05. price":"n/a"}}`)},
		"zero price":       {resp: jsonResponse(http.StatusOK, `{"Global Quote":{"05. price":"0.0000"}}`)},
		"throttle note":    {resp: jsonResponse(http.StatusOK, `{"Note":"Thank you for using Alpha Vantage!"}`)},
		"error message":    {resp: jsonResponse(http.StatusOK, `{"Error Message":"Invalid API call."}`)},
		"information only": {resp: jsonResponse(http.StatusOK, `{"Information":"premium endpoint"}`)},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			// Arrange
			ctrl := gomock.NewController(t)
			httpClient := NewMockHTTPClient(ctrl)
			httpClient.EXPECT().Do(gomock.Any()).Return(tc.resp, tc.err).Times(1)
			client := alphavantage.NewClient("k", alphavantage.WithHTTPClient(httpClient))

			// Act
			_, err := client.Price(t.Context(), company.Company{Symbol: "BGNE"})

			// Assert
			require.Error(t, err)
		})
	}
}

func TestWithBaseURLAndHeader(t *testing.T) {
	t.Parallel()

	// Arrange
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	base := "http://localhost:9999"

	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Truef(t, strings.HasPrefix(req.URL.String(), base), "unexpected url %s", req.URL.String())
			require.Equal(t, "bar", req.Header.Get("foo"))
			return jsonResponse(http.StatusOK, `{"Global Quote":{"05. price":"1"}}`), nil
		}).
		Times(1)

	client := alphavantage.NewClient("k",
		alphavantage.WithHTTPClient(httpClient),
		alphavantage.WithBaseURL(base),
		alphavantage.WithHeader(http.Header{"foo": []string{"bar"}}),
	)

	// Act
	price, err := client.GlobalQuote(t.Context(), "AZN")

	// Assert
	require.NoError(t, err)
	require.Equal(t, "1", price.String())
}

func TestGlobalQuote_TransportErrorHidesKey(t *testing.T) {
	t.Parallel()

	// Arrange
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return nil, &url.Error{Op: "Get", URL: req.URL.String(), Err: fmt.Errorf("dial tcp: connection refused")}
		})

	client := alphavantage.NewClient("SUPERSECRETKEY", alphavantage.WithHTTPClient(httpClient))

	// Act
	_, err := client.Price(t.Context(), company.Company{Name: "Merck", Symbol: "MRK"})

	// Assert
	require.ErrorContains(t, err, "connection refused")
	require.NotContains(t, err.Error(), "SUPERSECRETKEY")
}
