package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"

	"github.com/provizor/provizor/pkg/auth"
	"github.com/provizor/provizor/pkg/database/models"
	"github.com/provizor/provizor/pkg/provision"
)

// apiClient talks to the provisioning API. It satisfies wizard.Submitter
// so the wizard state machine can issue creation requests through it.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// apiErrorBody is the error envelope returned by the API on 4xx/5xx.
type apiErrorBody struct {
	Message string                 `json:"message"`
	Errors  []provision.FieldError `json:"errors"`
}

func (e *apiErrorBody) format() string {
	if len(e.Errors) == 0 {
		return e.Message
	}
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
}

// login prompts for any missing credentials and exchanges them for a
// token.
func login() (*apiClient, error) {
	if username == "" {
		if err := survey.AskOne(&survey.Input{Message: "Username:"}, &username, survey.WithValidator(survey.Required)); err != nil {
			return nil, err
		}
	}
	if password == "" {
		if err := survey.AskOne(&survey.Password{Message: "Password:"}, &password, survey.WithValidator(survey.Required)); err != nil {
			return nil, err
		}
	}

	client := &apiClient{
		baseURL: strings.TrimRight(serverURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
	}

	body, err := json.Marshal(auth.LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}

	resp, err := client.http.Post(client.baseURL+"/api/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to reach API at %s: %w", client.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("login failed: %s", readAPIError(resp.Body))
	}

	var loginResp auth.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}

	client.token = loginResp.Token
	fmt.Printf("Logged in as %s (%s)\n", loginResp.User.Username, loginResp.User.Role)
	return client, nil
}

func (c *apiClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", path, readAPIError(resp.Body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Plans fetches the plan catalog.
func (c *apiClient) Plans(ctx context.Context) ([]models.Plan, error) {
	var plans []models.Plan
	if err := c.get(ctx, "/api/plans", &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// Clients fetches the registered clients.
func (c *apiClient) Clients(ctx context.Context) ([]models.Client, error) {
	var clients []models.Client
	if err := c.get(ctx, "/api/clients", &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

// Submit posts a creation request. A 201 response is returned as a
// result regardless of the provisioning outcome; the body's status tells
// the two apart.
func (c *apiClient) Submit(ctx context.Context, req *provision.CreateRequest) (*provision.CreateResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/virtual-machines", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("creation rejected: %s", readAPIError(resp.Body))
	}

	var result provision.CreateResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode creation response: %w", err)
	}
	return &result, nil
}

func readAPIError(r io.Reader) string {
	data, err := io.ReadAll(r)
	if err != nil {
		return err.Error()
	}
	var body apiErrorBody
	if err := json.Unmarshal(data, &body); err != nil || body.Message == "" {
		return strings.TrimSpace(string(data))
	}
	return body.format()
}
