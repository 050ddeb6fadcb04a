// Package schoolapi names the REST endpoints of the school-management
// backend on top of the gateway request path.
package schoolapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/aabid-khan7222/myschool-sub002/internal/domain"
	"github.com/aabid-khan7222/myschool-sub002/internal/gateway"
	"github.com/aabid-khan7222/myschool-sub002/internal/ports"
)

var (
	ErrUnknownResource = errors.New("unknown resource")
	ErrUnknownRole     = errors.New("unknown role")
	ErrMissingToken    = errors.New("login response did not include a token")
	ErrMissingID       = errors.New("record id is required")
)

type Resource string

const (
	ResourceTeachers   Resource = "teachers"
	ResourceStudents   Resource = "students"
	ResourceParents    Resource = "parents"
	ResourceClasses    Resource = "classes"
	ResourceSections   Resource = "sections"
	ResourceSubjects   Resource = "subjects"
	ResourceAttendance Resource = "attendance"
	ResourceExams      Resource = "exams"
	ResourceFees       Resource = "fees"
	ResourceNotices    Resource = "notices"
	ResourceHolidays   Resource = "holidays"
	ResourceTransport  Resource = "transport"
	ResourceHostels    Resource = "hostels"
	ResourceLibrary    Resource = "library"
)

var resources = []Resource{
	ResourceTeachers,
	ResourceStudents,
	ResourceParents,
	ResourceClasses,
	ResourceSections,
	ResourceSubjects,
	ResourceAttendance,
	ResourceExams,
	ResourceFees,
	ResourceNotices,
	ResourceHolidays,
	ResourceTransport,
	ResourceHostels,
	ResourceLibrary,
}

var dashboardRoles = []domain.Role{
	domain.RoleAdmin,
	domain.RoleTeacher,
	domain.RoleStudent,
	domain.RoleParent,
	domain.RoleStaff,
}

func Resources() []Resource {
	return slices.Clone(resources)
}

func ParseResource(raw string) (Resource, error) {
	candidate := Resource(strings.ToLower(strings.Trim(strings.TrimSpace(raw), "/")))
	if !slices.Contains(resources, candidate) {
		return "", fmt.Errorf("%w: %q", ErrUnknownResource, raw)
	}
	return candidate, nil
}

func ParseRole(raw string) (domain.Role, error) {
	candidate := domain.Role(strings.ToLower(strings.TrimSpace(raw)))
	if !slices.Contains(dashboardRoles, candidate) {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, raw)
	}
	return candidate, nil
}

// Requester is the part of the gateway the catalog needs.
type Requester interface {
	Request(ctx context.Context, endpoint string, opts gateway.RequestOptions) (domain.Payload, error)
}

type Client struct {
	requester   Requester
	credentials ports.CredentialStore
}

func NewClient(requester Requester, credentials ports.CredentialStore) *Client {
	return &Client{requester: requester, credentials: credentials}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Login exchanges credentials for a bearer token and persists the session.
func (c *Client) Login(ctx context.Context, username string, password string) (domain.User, error) {
	payload, err := c.requester.Request(ctx, "/auth/login", gateway.RequestOptions{
		Method: http.MethodPost,
		Body:   loginRequest{Username: username, Password: password},
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("login: %w", err)
	}

	var resp loginResponse
	if err := payload.Decode(&resp); err != nil {
		return domain.User{}, fmt.Errorf("login: %w", err)
	}
	if resp.Token == "" {
		return domain.User{}, ErrMissingToken
	}

	user := domain.User{Username: username}
	if resp.User != nil {
		user = *resp.User
	}

	if err := c.credentials.Set(ctx, resp.Token, user); err != nil {
		return domain.User{}, fmt.Errorf("persist session: %w", err)
	}

	return user, nil
}

// Logout forgets the stored session. The backend keeps no session state.
func (c *Client) Logout(ctx context.Context) error {
	return c.credentials.Clear(ctx)
}

func (c *Client) List(ctx context.Context, resource Resource) (domain.Payload, error) {
	return c.requester.Request(ctx, collectionPath(resource), gateway.RequestOptions{})
}

func (c *Client) Get(ctx context.Context, resource Resource, id string) (domain.Payload, error) {
	path, err := recordPath(resource, id)
	if err != nil {
		return nil, err
	}
	return c.requester.Request(ctx, path, gateway.RequestOptions{})
}

func (c *Client) Create(ctx context.Context, resource Resource, body any) (domain.Payload, error) {
	return c.requester.Request(ctx, collectionPath(resource), gateway.RequestOptions{
		Method: http.MethodPost,
		Body:   body,
	})
}

func (c *Client) Update(ctx context.Context, resource Resource, id string, body any) (domain.Payload, error) {
	path, err := recordPath(resource, id)
	if err != nil {
		return nil, err
	}
	return c.requester.Request(ctx, path, gateway.RequestOptions{
		Method: http.MethodPut,
		Body:   body,
	})
}

func (c *Client) Delete(ctx context.Context, resource Resource, id string) (domain.Payload, error) {
	path, err := recordPath(resource, id)
	if err != nil {
		return nil, err
	}
	return c.requester.Request(ctx, path, gateway.RequestOptions{Method: http.MethodDelete})
}

func (c *Client) Dashboard(ctx context.Context, role domain.Role) (domain.Payload, error) {
	return c.requester.Request(ctx, "/dashboard/"+url.PathEscape(string(role)), gateway.RequestOptions{})
}

func collectionPath(resource Resource) string {
	return "/" + string(resource)
}

func recordPath(resource Resource, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrMissingID
	}
	return collectionPath(resource) + "/" + url.PathEscape(id), nil
}
