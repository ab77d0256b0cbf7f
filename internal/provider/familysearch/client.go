// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package familysearch looks up relatives through the FamilySearch tree API.
package familysearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/kinpath/internal/httputil"
	"github.com/pdiddy/kinpath/pkg/types"
)

// Endpoints for one FamilySearch environment.
type Endpoints struct {
	API   string
	Token string
}

// Environments maps environment names to their API and token endpoints.
var Environments = map[string]Endpoints{
	"production": {
		API:   "https://api.familysearch.org",
		Token: "https://ident.familysearch.org/cis-web/oauth2/v3/token",
	},
	"beta": {
		API:   "https://apibeta.familysearch.org",
		Token: "https://identbeta.familysearch.org/cis-web/oauth2/v3/token",
	},
	"integration": {
		API:   "https://api-integ.familysearch.org",
		Token: "https://identint.familysearch.org/cis-web/oauth2/v3/token",
	},
}

// DefaultEnvironment is used when none is configured.
const DefaultEnvironment = "beta"

const (
	defaultTimeout   = 10 * time.Second
	maxTimeout       = 20 * time.Second
	defaultUserAgent = "kinpath/0.1"
	coupleType       = "http://gedcomx.org/Couple"
)

var (
	// ErrNoToken means neither an access token nor an app key for an
	// unauthenticated session is available.
	ErrNoToken = errors.New("no FamilySearch access token")

	// ErrNoPath means the relationship endpoint answered without a usable
	// path between the two people.
	ErrNoPath = errors.New("no relationship path returned")
)

var idPattern = regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{3,4}$`)

// NormalizeID trims and upper-cases a FamilySearch person id.
func NormalizeID(raw string) types.PersonID {
	return types.PersonID(strings.ToUpper(strings.TrimSpace(raw)))
}

// ValidID reports whether id has the XXXX-XXX or XXXX-XXXX shape of a
// FamilySearch tree id.
func ValidID(id types.PersonID) bool {
	return idPattern.MatchString(string(id))
}

// Client fetches person records from FamilySearch. It implements
// provider.Provider and the remote relationship finder.
type Client struct {
	http       *http.Client
	endpoints  Endpoints
	userAgent  string
	maxRetries int
	clientIP   string
	appKey     string
	log        *zap.Logger

	mu      sync.Mutex
	token   string
	session bool // token came from the app key and can be renewed
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for lookup failures.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithHTTPClient replaces the HTTP client, e.g. with an httptest client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithClientIP sets the ip_address sent when requesting an unauthenticated
// session token.
func WithClientIP(ip string) Option {
	return func(c *Client) { c.clientIP = ip }
}

// New builds a client from provider and HTTP settings. BaseURL overrides the
// API endpoint of the chosen environment.
func New(pc types.ProviderConfig, hc types.HTTPConfig, opts ...Option) (*Client, error) {
	env := strings.ToLower(pc.Environment)
	if env == "" {
		env = DefaultEnvironment
	}
	if env == "prod" {
		env = "production"
	}
	eps, ok := Environments[env]
	if !ok {
		return nil, fmt.Errorf("unknown FamilySearch environment %q", pc.Environment)
	}
	if pc.BaseURL != "" {
		eps.API = strings.TrimRight(pc.BaseURL, "/")
	}

	timeout := hc.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if timeout > maxTimeout {
		timeout = maxTimeout
	}
	ua := hc.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	c := &Client{
		http:       &http.Client{Timeout: timeout},
		endpoints:  eps,
		userAgent:  ua,
		maxRetries: pc.MaxRetries,
		clientIP:   "127.0.0.1",
		appKey:     pc.AppKey,
		token:      pc.AccessToken,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetTokenURL points unauthenticated session requests at url. Tests use it
// with an httptest server.
func (c *Client) SetTokenURL(url string) { c.endpoints.Token = url }

// Name returns "familysearch".
func (c *Client) Name() string { return string(types.ProviderFamilySearch) }

// FetchRelatives reads /platform/tree/persons/{id}. Any failure yields a
// failed record.
func (c *Client) FetchRelatives(ctx context.Context, id types.PersonID) types.RelativesRecord {
	var pr personResponse
	if err := c.getJSON(ctx, "/platform/tree/persons/"+url.PathEscape(string(id)), nil, &pr); err != nil {
		c.log.Warn("person lookup failed", zap.String("person_id", string(id)), zap.Error(err))
		return types.FailedRecord(id)
	}
	return pr.relatives(id)
}

// FindRelationship asks the FamilySearch relationship finder for a path from
// start to end. It returns the ids along the path and the common ancestor,
// taken from the commonAncestor role when present and otherwise the middle
// of the path.
func (c *Client) FindRelationship(ctx context.Context, start, end types.PersonID) ([]types.PersonID, types.PersonID, error) {
	path := fmt.Sprintf("/platform/tree/persons/%s/relationships/%s", url.PathEscape(string(start)), url.PathEscape(string(end)))
	var rr relationshipResponse
	if err := c.getJSON(ctx, path, url.Values{"personDetails": {"true"}}, &rr); err != nil {
		return nil, "", err
	}

	var ids []types.PersonID
	var common types.PersonID
	for _, p := range rr.Persons {
		if p.ID == "" {
			continue
		}
		ids = append(ids, types.PersonID(p.ID))
		if common == "" && p.DisplayProperties.Role == "commonAncestor" {
			common = types.PersonID(p.ID)
		}
	}
	if len(ids) == 0 || ids[0] != start || ids[len(ids)-1] != end {
		return nil, "", ErrNoPath
	}
	if common == "" {
		common = ids[len(ids)/2]
	}
	return ids, common, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}
	resp, err := c.get(ctx, path, params, token)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized && c.dropSession(token) {
		resp.Body.Close()
		if token, err = c.accessToken(ctx); err != nil {
			return err
		}
		if resp, err = c.get(ctx, path, params, token); err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("FamilySearch returned HTTP %d for %s", resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing FamilySearch response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, token string) (*http.Response, error) {
	reqURL := c.endpoints.API + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("FamilySearch request %s: %w", path, err)
	}
	return resp, nil
}

// dropSession forgets an expired session token so the next request obtains
// a new one. It reports false for configured tokens, which cannot be renewed,
// and for a token another request has already replaced.
func (c *Client) dropSession(token string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.session {
		return false
	}
	if c.token == token {
		c.token = ""
	}
	return true
}

// accessToken returns the configured token, or obtains and remembers an
// unauthenticated session token when only an app key is available.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, nil
	}
	if c.appKey == "" {
		return "", ErrNoToken
	}
	tok, err := c.unauthenticatedToken(ctx)
	if err != nil {
		return "", err
	}
	c.token = tok
	c.session = true
	return tok, nil
}

func (c *Client) unauthenticatedToken(ctx context.Context) (string, error) {
	form := url.Values{
		"grant_type": {"unauthenticated_session"},
		"client_id":  {c.appKey},
		"ip_address": {c.clientIP},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoints.Token, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("requesting unauthenticated session: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unauthenticated session: HTTP %d: %w", resp.StatusCode, ErrNoToken)
	}

	var tr struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("parsing token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", ErrNoToken
	}
	return tr.AccessToken, nil
}

// FamilySearch JSON structures (GEDCOM X subset).
type personResponse struct {
	Persons                      []fsPerson         `json:"persons"`
	ChildAndParentsRelationships []fsChildAndParent `json:"childAndParentsRelationships"`
	Relationships                []fsRelationship   `json:"relationships"`
}

type fsPerson struct {
	ID      string `json:"id"`
	Display struct {
		Name string `json:"name"`
	} `json:"display"`
	DisplayProperties struct {
		Role string `json:"role"`
	} `json:"displayProperties"`
}

type fsResourceRef struct {
	ResourceID string `json:"resourceId"`
}

type fsChildAndParent struct {
	Parent1 *fsResourceRef `json:"parent1"`
	Parent2 *fsResourceRef `json:"parent2"`
	Father  *fsResourceRef `json:"father"`
	Mother  *fsResourceRef `json:"mother"`
	Child   *fsResourceRef `json:"child"`
}

type fsRelationship struct {
	Type    string         `json:"type"`
	Person1 *fsResourceRef `json:"person1"`
	Person2 *fsResourceRef `json:"person2"`
}

type relationshipResponse struct {
	Persons []fsPerson `json:"persons"`
}

func refID(r *fsResourceRef) types.PersonID {
	if r == nil {
		return ""
	}
	return types.PersonID(r.ResourceID)
}

// relatives extracts the record of id from a person response.
func (pr personResponse) relatives(id types.PersonID) types.RelativesRecord {
	var parents, children, spouses []types.PersonID

	for _, rel := range pr.ChildAndParentsRelationships {
		child := refID(rel.Child)
		var ps []types.PersonID
		for _, ref := range []*fsResourceRef{rel.Parent1, rel.Parent2, rel.Father, rel.Mother} {
			if p := refID(ref); p != "" {
				ps = append(ps, p)
			}
		}
		if child == id {
			parents = append(parents, ps...)
		}
		for _, p := range ps {
			if p == id && child != "" {
				children = append(children, child)
				break
			}
		}
	}

	for _, rel := range pr.Relationships {
		if rel.Type != coupleType {
			continue
		}
		a, b := refID(rel.Person1), refID(rel.Person2)
		switch {
		case a == id && b != "":
			spouses = append(spouses, b)
		case b == id && a != "":
			spouses = append(spouses, a)
		}
	}

	var name string
	if len(pr.Persons) > 0 {
		name = pr.Persons[0].Display.Name
	}
	for _, p := range pr.Persons {
		if types.PersonID(p.ID) == id {
			name = p.Display.Name
			break
		}
	}

	return types.RelativesRecord{
		PersonID:  id,
		Name:      name,
		Parents:   types.UniqueIDs(id, parents),
		Children:  types.UniqueIDs(id, children),
		Spouses:   types.UniqueIDs(id, spouses),
		FetchedOK: true,
	}
}
