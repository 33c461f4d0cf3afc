package handlers

import (
	"net/http"
	"testing"

	"github.com/anveshk/osintdex/db/searchdb"
	"github.com/anveshk/osintdex/validation"
	"github.com/stretchr/testify/require"
)

func seedSearchRecords(assert *require.Assertions, store searchdb.DB) {

	records := []searchdb.Record{
		{Type: "email", Value: "a@b.com", Source: "breach1"},
		{Type: "email", Value: "a@b.org", Source: "breach2"},
		{Type: "phone", Value: "+1-555-0000", Source: "breach1"},
		{Type: "username", Value: "johndoe", Source: "forumdump"},
	}
	indexed, failed, err := store.BulkWrite(records)
	assert.NoError(err)
	assert.Equal(len(records), indexed)
	assert.Zero(failed)
}

var searchRejectionTestCases = []struct {
	name           string
	apiKey         string
	queryParams    map[string]string
	expectedStatus int
}{
	{
		name:           "NoAPIKey",
		apiKey:         "",
		queryParams:    map[string]string{"q": "a@b.com"},
		expectedStatus: http.StatusUnauthorized,
	},
	{
		name:           "UnknownAPIKey",
		apiKey:         "no-such-key",
		queryParams:    map[string]string{"q": "a@b.com"},
		expectedStatus: http.StatusUnauthorized,
	},
	{
		name:           "UnverifiedUser",
		apiKey:         testKeyUnverified,
		queryParams:    map[string]string{"q": "a@b.com"},
		expectedStatus: http.StatusForbidden,
	},
	{
		name:           "ExhaustedAllowance",
		apiKey:         testKeyExhausted,
		queryParams:    map[string]string{"q": "a@b.com"},
		expectedStatus: http.StatusForbidden,
	},
	{
		name:           "NoQuery",
		apiKey:         testKeyMember,
		queryParams:    map[string]string{},
		expectedStatus: http.StatusNotAcceptable,
	},
	{
		name:           "QueryTooShort",
		apiKey:         testKeyMember,
		queryParams:    map[string]string{"q": "a"},
		expectedStatus: http.StatusNotAcceptable,
	},
	{
		name:           "UnknownRecordType",
		apiKey:         testKeyMember,
		queryParams:    map[string]string{"q": "a@b.com", "type": "ipaddress"},
		expectedStatus: http.StatusNotAcceptable,
	},
}

func TestHandleSearchRejections(t *testing.T) {
	assert := require.New(t)
	server := setupTestServer(t, assert)

	for _, testCase := range searchRejectionTestCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			w := makeTestHTTPRequest(server.router, assert, http.MethodGet, "/search", testCase.apiKey, nil, testCase.queryParams)
			assert.Equal(testCase.expectedStatus, w.Code, "response gotten was %s", w.Body.String())
		})
	}
}

func TestHandleSearchRejectionsSpendNothing(t *testing.T) {
	assert := require.New(t)
	server := setupTestServer(t, assert)

	w := makeTestHTTPRequest(server.router, assert, http.MethodGet, "/search", testKeyMember, nil, map[string]string{"q": "a"})
	assert.Equal(http.StatusNotAcceptable, w.Code)

	member, err := server.userDB.UserByAPIKey(testKeyMember)
	assert.NoError(err)
	assert.Equal(10, member.SearchesRemaining, "a rejected request must not cost a search")
}

func TestHandleSearchGroupsResultsAndSpendsOneSearch(t *testing.T) {
	assert := require.New(t)
	server := setupTestServer(t, assert)
	seedSearchRecords(assert, server.searchDB)

	w := makeTestHTTPRequest(server.router, assert, http.MethodGet, "/search", testKeyMember, nil, map[string]string{"q": "a@b.com"})
	assert.Equal(http.StatusOK, w.Code, "response gotten was %s", w.Body.String())

	data := decodeResponse(assert, w)["data"].(map[string]any)
	assert.Equal("a@b.com", data["query"])
	assert.Equal("all", data["type"])

	byType := data["results_by_type"].(map[string]any)
	assert.Len(byType, len(validation.RecordTypes))
	for _, recordType := range validation.RecordTypes {
		_, ok := byType[recordType]
		assert.True(ok, "category %s should always be present", recordType)
	}

	emails := byType["email"].(map[string]any)
	assert.GreaterOrEqual(emails["count"].(float64), float64(1))
	assert.NotEmpty(emails["results"])

	member, err := server.userDB.UserByAPIKey(testKeyMember)
	assert.NoError(err)
	assert.Equal(9, member.SearchesRemaining, "a served search costs exactly one")
}

func TestHandleSearchTypeFilter(t *testing.T) {
	assert := require.New(t)
	server := setupTestServer(t, assert)
	seedSearchRecords(assert, server.searchDB)

	w := makeTestHTTPRequest(server.router, assert, http.MethodGet, "/search", testKeyMember, nil, map[string]string{"q": "johndoe", "type": "email"})
	assert.Equal(http.StatusOK, w.Code, "response gotten was %s", w.Body.String())

	data := decodeResponse(assert, w)["data"].(map[string]any)
	assert.Equal("email", data["type"])
	assert.Zero(data["total_results"].(float64), "the category filter is hard, matches of other categories are excluded")
}
