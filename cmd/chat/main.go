package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// envelope mirrors the server's response wrapper.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Response            string `json:"response"`
		SessionId           string `json:"session_id"`
		DocumentContextUsed bool   `json:"document_context_used"`
	} `json:"data"`
}

type client struct {
	baseURL   string
	sessionID string
	http      *http.Client
}

func main() {
	baseURL := flag.String("url", "http://localhost:5000", "server base URL")
	sessionID := flag.String("session", "", "continue an existing session")
	contextFile := flag.String("file", "", "document to attach to the first question")
	userMessage := flag.String("m", "", "ask a single question and exit")
	flag.Parse()

	c := &client{
		baseURL:   strings.TrimRight(*baseURL, "/"),
		sessionID: *sessionID,
		http:      &http.Client{Timeout: 2 * time.Minute},
	}

	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
		width = w
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		log.Fatalln("ERROR:", err)
	}

	attach := *contextFile
	ask := func(prompt string) {
		res, err := c.generate(prompt, attach)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return
		}
		attach = ""

		out, err := renderer.Render(res.Data.Response)
		if err != nil {
			out = res.Data.Response
		}
		fmt.Print(out)
		fmt.Printf("(session %s)\n\n", res.Data.SessionId)
	}

	if *userMessage != "" {
		ask(*userMessage)
		return
	}

	readLine := lineReader()
	for {
		prompt, err := readLine()
		if err != nil {
			if err != io.EOF {
				fmt.Fprintln(os.Stderr, "Fatal:", err)
			}
			return
		}
		prompt = strings.TrimSpace(prompt)
		if prompt == "" {
			continue
		}
		if prompt == "/quit" || prompt == "/exit" {
			return
		}
		ask(prompt)
	}
}

// lineReader uses a line editor on a terminal and plain scanning on pipes.
func lineReader() func() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		scanner := bufio.NewScanner(os.Stdin)
		return func() (string, error) {
			if scanner.Scan() {
				return scanner.Text(), nil
			}
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
	}

	t := term.NewTerminal(os.Stdin, "> ")
	return func() (string, error) {
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return "", err
		}
		line, err := t.ReadLine()
		if restoreErr := term.Restore(fd, oldState); restoreErr != nil && err == nil {
			err = restoreErr
		}
		return line, err
	}
}

func (c *client) generate(prompt, attachPath string) (*envelope, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("prompt", prompt); err != nil {
		return nil, err
	}
	if c.sessionID != "" {
		if err := writer.WriteField("session_id", c.sessionID); err != nil {
			return nil, err
		}
	}
	if attachPath != "" {
		if err := attachFile(writer, attachPath); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/chatbot/v1/generate", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var res envelope
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("unexpected response (%s): %w", resp.Status, err)
	}
	if resp.StatusCode != http.StatusOK || !res.Success {
		return nil, fmt.Errorf("%s: %s", resp.Status, res.Message)
	}

	c.sessionID = res.Data.SessionId
	return &res, nil
}

func attachFile(writer *multipart.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	part, err := writer.CreateFormFile("context_file", filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f)
	return err
}
