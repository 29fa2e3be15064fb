package roomchat

import (
    "bytes"
    "encoding/json"
    "fmt"
    "net/http"
    "time"
)

// BotSender is the username under which automatic replies are posted.
const BotSender = "Bot"

// defBotTimeout bounds how long a single reply request may take.
const defBotTimeout = time.Minute * 2

// Bot generates the automatic replies of AI-enabled rooms.
//
// Ask may be arbitrarily slow and may fail; rooms always call it from a
// detached goroutine and turn failures into regular bot messages.
type Bot interface {
    // Ask for a reply to the conversation described by `prompt`.
    Ask(prompt string) (string, error)
}

// OllamaClient is a Bot backed by an Ollama-compatible HTTP endpoint.
type OllamaClient struct {
    // url of the generate endpoint, e.g. "http://localhost:11434/api/generate".
    url string

    // model requested on every call.
    model string

    // client used for every request, with its timeout already set.
    client *http.Client
}

// generateRequest is the body of a non-streaming generate call.
type generateRequest struct {
    Model string `json:"model"`
    Prompt string `json:"prompt"`
    Stream bool `json:"stream"`
}

// generateResponse is the subset of the reply this client cares about.
type generateResponse struct {
    Response string `json:"response"`
}

// Ask for a reply to `prompt`, blocking until the endpoint answers or the
// client's timeout elapses.
func (o *OllamaClient) Ask(prompt string) (string, error) {
    body, err := json.Marshal(generateRequest {
        Model: o.model,
        Prompt: prompt,
        Stream: false,
    })
    if err != nil {
        return "", err
    }

    resp, err := o.client.Post(o.url, "application/json", bytes.NewReader(body))
    if err != nil {
        return "", err
    }
    defer resp.Body.Close()

    if resp.StatusCode != http.StatusOK {
        return "", fmt.Errorf("unexpected status from the bot endpoint: %s", resp.Status)
    }

    var out generateResponse
    err = json.NewDecoder(resp.Body).Decode(&out)
    if err != nil {
        return "", err
    }

    return out.Response, nil
}

// NewOllamaClient create a Bot that requests replies from the Ollama
// server at `baseURL` (e.g. "http://localhost:11434"), using `model`.
//
// A non-positive `timeout` selects the default of 2 minutes.
func NewOllamaClient(baseURL, model string, timeout time.Duration) *OllamaClient {
    if timeout <= 0 {
        timeout = defBotTimeout
    }

    return &OllamaClient {
        url: baseURL + "/api/generate",
        model: model,
        client: &http.Client {
            Timeout: timeout,
        },
    }
}
