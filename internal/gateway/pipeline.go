package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aabid-khan7222/myschool-sub002/internal/domain"
	"github.com/aabid-khan7222/myschool-sub002/internal/ports"
	"github.com/google/uuid"
)

const (
	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-Id"
	contentTypeJSON     = "application/json"
)

// PreparedRequest is a request whose body has already been serialized.
type PreparedRequest struct {
	Method   string
	Endpoint string
	Headers  map[string]string
	Body     []byte
}

type BaseURLResolver interface {
	Resolve(ctx context.Context) string
}

// Pipeline builds the absolute URL and headers for a request, sends it and
// hands the response to the classifier.
type Pipeline struct {
	resolver     BaseURLResolver
	credentials  ports.CredentialStore
	classifier   *Classifier
	client       *http.Client
	newRequestID func() string
}

func NewPipeline(resolver BaseURLResolver, credentials ports.CredentialStore, classifier *Classifier, client *http.Client) *Pipeline {
	if client == nil {
		client = http.DefaultClient
	}

	// Authentication travels only in the bearer header; never send ambient cookies.
	noCookies := *client
	noCookies.Jar = nil

	return &Pipeline{
		resolver:     resolver,
		credentials:  credentials,
		classifier:   classifier,
		client:       &noCookies,
		newRequestID: uuid.NewString,
	}
}

func (p *Pipeline) Execute(ctx context.Context, req PreparedRequest) (domain.Payload, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target := joinURL(p.resolver.Resolve(ctx), req.Endpoint)

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, &domain.TransportError{Err: fmt.Errorf("create request: %w", err)}
	}
	p.applyHeaders(ctx, httpReq.Header, req.Headers)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &domain.TransportError{Err: err}
	}

	return p.classifier.Classify(ctx, resp)
}

func (p *Pipeline) applyHeaders(ctx context.Context, header http.Header, custom map[string]string) {
	header.Set("Content-Type", contentTypeJSON)
	header.Set("Accept", contentTypeJSON)
	header.Set(headerRequestID, p.newRequestID())

	for key, value := range custom {
		header.Set(key, value)
	}

	if p.credentials == nil {
		return
	}
	if creds := p.credentials.Get(ctx); creds.HasToken() {
		header.Set(headerAuthorization, "Bearer "+creds.Token)
	}
}

func joinURL(base string, endpoint string) string {
	if strings.HasPrefix(endpoint, "/") {
		return base + endpoint
	}
	return base + "/" + endpoint
}
