package ga

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/adrianmross/ga-context/pkg/selector"
)

// newTestClient points a Client at a fake management endpoint.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(context.Background(), "", option.WithEndpoint(srv.URL+"/"), option.WithoutAuthentication())
	require.NoError(t, err)
	return c
}

func managementHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		assert.Equal(t, fmt.Sprint(MaxResults), r.URL.Query().Get("maxResults"))
		path := r.URL.Path
		switch {
		case strings.HasSuffix(path, "/management/accounts"):
			fmt.Fprint(w, `{"kind":"analytics#accounts","items":[{"id":"1","name":"B"},{"id":"2","name":"a"}]}`)
		case strings.HasSuffix(path, "/management/accounts/2/webproperties"):
			fmt.Fprint(w, `{"kind":"analytics#webproperties","items":[{"id":"UA-2-1","name":"site","accountId":"2"}]}`)
		case strings.HasSuffix(path, "/management/accounts/2/webproperties/UA-2-1/profiles"):
			fmt.Fprint(w, `{"kind":"analytics#profiles","items":[{"id":"77","name":"All Web Site Data"}]}`)
		case strings.HasSuffix(path, "/management/accounts/9/webproperties"):
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"error":{"code":403,"message":"User does not have sufficient permissions for this account."}}`)
		default:
			http.NotFound(w, r)
		}
	}
}

func TestFetchLevels(t *testing.T) {
	c := newTestClient(t, managementHandler(t))
	ctx := context.Background()

	accounts := c.Fetch(ctx, selector.Request{Level: selector.LevelAccount})
	require.Nil(t, accounts.Err)
	assert.Equal(t, selector.LevelAccount, accounts.Kind)
	assert.Equal(t, []selector.Item{{ID: "1", Name: "B"}, {ID: "2", Name: "a"}}, accounts.Items)

	props := c.Fetch(ctx, selector.Request{Level: selector.LevelProperty, AccountID: "2"})
	require.Nil(t, props.Err)
	assert.Equal(t, []selector.Item{{ID: "UA-2-1", Name: "site"}}, props.Items)

	profiles := c.Fetch(ctx, selector.Request{Level: selector.LevelProfile, AccountID: "2", PropertyID: "UA-2-1"})
	require.Nil(t, profiles.Err)
	assert.Equal(t, selector.LevelProfile, profiles.Kind)
	assert.Equal(t, []selector.Item{{ID: "77", Name: "All Web Site Data"}}, profiles.Items)
}

func TestFetchErrorBecomesPayload(t *testing.T) {
	c := newTestClient(t, managementHandler(t))
	res := c.Fetch(context.Background(), selector.Request{Level: selector.LevelProperty, AccountID: "9"})
	require.NotNil(t, res.Err)
	assert.Equal(t, "User does not have sufficient permissions for this account.", res.Err.Message)
	assert.Empty(t, res.Items)
}

func TestSelectorOverManagementAPI(t *testing.T) {
	c := newTestClient(t, managementHandler(t))
	s := selector.New("main", nil)
	require.NoError(t, s.Load(context.Background(), c))

	assert.Equal(t, selector.Selection{AccountID: "2", PropertyID: "UA-2-1", ProfileID: "77"}, s.Selection())
	table, err := s.TableID()
	require.NoError(t, err)
	assert.Equal(t, "ga:77", table)
}

func TestNewClientMissingCredentialsFile(t *testing.T) {
	_, err := NewClient(context.Background(), "/nonexistent/creds.json")
	assert.ErrorContains(t, err, "read credentials")
}

func TestDescribe(t *testing.T) {
	c := newTestClient(t, managementHandler(t))
	d, err := Describe(context.Background(), c, selector.Selection{AccountID: "2", PropertyID: "UA-2-1", ProfileID: "77"})
	require.NoError(t, err)
	assert.Equal(t, Details{
		AccountName:  "a",
		AccountID:    "2",
		PropertyName: "site",
		PropertyID:   "UA-2-1",
		ProfileName:  "All Web Site Data",
		ProfileID:    "77",
		TableID:      "ga:77",
	}, d)
}

func TestDescribeStopsOnError(t *testing.T) {
	c := newTestClient(t, managementHandler(t))
	_, err := Describe(context.Background(), c, selector.Selection{AccountID: "9", PropertyID: "x", ProfileID: "y"})
	assert.ErrorContains(t, err, "list property: User does not have sufficient permissions")
}
