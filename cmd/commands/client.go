package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

var (
	clientURL     string
	clientID      string
	clientAudio   string
	clientOut     string
	clientTimeout time.Duration
)

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Send a WAV file to a running server over websocket",
	Long: `Authenticate against a suara server, stream a WAV utterance over /ws,
print the turn events and save the spoken reply.

The shared secret is read from CLIENT_SECRET.

Examples:
  CLIENT_SECRET=... suara client --audio question.wav
  suara client --url http://kiosk:8080 --audio question.wav --out reply.mp3`,
	RunE: runClient,
}

func init() {
	flags := clientCmd.Flags()
	flags.StringVar(&clientURL, "url", "http://localhost:8080", "server base URL")
	flags.StringVar(&clientID, "client-id", "suara-cli", "client id to authenticate as")
	flags.StringVar(&clientAudio, "audio", "", "WAV file to send (required)")
	flags.StringVar(&clientOut, "out", "reply.mp3", "where to save the reply audio")
	flags.DurationVar(&clientTimeout, "timeout", 2*time.Minute, "how long to wait for the reply")
	rootCmd.AddCommand(clientCmd)
}

func runClient(cmd *cobra.Command, args []string) error {
	if clientAudio == "" {
		return errors.New("please specify an audio file with --audio")
	}
	audioData, err := os.ReadFile(clientAudio)
	if err != nil {
		return fmt.Errorf("failed to read audio file: %w", err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Server.ClientSecret == "" {
		return errors.New("CLIENT_SECRET is required to authenticate")
	}

	base, err := url.Parse(clientURL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}

	token, err := authenticate(base, clientID, cfg.Server.ClientSecret)
	if err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}

	wsURL := *base
	wsURL.Scheme = strings.Replace(base.Scheme, "http", "ws", 1)
	wsURL.Path = "/ws"

	headers := http.Header{}
	headers.Add("Authorization", "Bearer "+token)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), headers)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	fmt.Printf("📤 Sending %s (%d bytes)\n", clientAudio, len(audioData))
	if err := conn.WriteMessage(websocket.BinaryMessage, audioData); err != nil {
		return fmt.Errorf("failed to send audio: %w", err)
	}

	reply, err := receiveTurn(conn, clientTimeout)
	if err != nil {
		return err
	}

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

	if len(reply) == 0 {
		fmt.Println("No reply audio received.")
		return nil
	}
	if err := os.WriteFile(clientOut, reply, 0o644); err != nil {
		return fmt.Errorf("failed to save reply audio: %w", err)
	}
	fmt.Printf("💾 Reply audio saved to %s (%d bytes)\n", clientOut, len(reply))
	return nil
}

func authenticate(base *url.URL, id, secret string) (string, error) {
	payload, err := json.Marshal(map[string]string{"client_id": id, "client_secret": secret})
	if err != nil {
		return "", err
	}

	resp, err := http.Post(base.JoinPath("/api/v1/auth/token").String(), "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("authentication failed: %s", strings.TrimSpace(string(body)))
	}

	var token struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &token); err != nil {
		return "", err
	}
	return token.Token, nil
}

// receiveTurn prints events and collects binary audio until the turn result arrives
func receiveTurn(conn *websocket.Conn, timeout time.Duration) ([]byte, error) {
	conn.SetReadDeadline(time.Now().Add(timeout))

	var audio bytes.Buffer
	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("connection closed before the turn finished: %w", err)
		}

		if messageType == websocket.BinaryMessage {
			audio.Write(message)
			continue
		}

		var msg struct {
			Type   string `json:"type"`
			State  string `json:"state"`
			Text   string `json:"text"`
			Code   string `json:"error_code"`
			Detail string `json:"message"`
			Error  string `json:"error"`
			Result struct {
				Record struct {
					Outcome string `json:"outcome"`
				} `json:"record"`
			} `json:"result"`
		}
		if err := json.Unmarshal(message, &msg); err != nil {
			fmt.Printf("? %s\n", message)
			continue
		}

		switch msg.Type {
		case "state_changed":
			fmt.Printf("… %s\n", msg.State)
		case "transcript":
			fmt.Printf("🎤 You said: %s\n", msg.Text)
		case "reply":
			fmt.Printf("💬 Assistant: %s\n", msg.Text)
		case "error":
			return nil, fmt.Errorf("server error %s: %s", msg.Code, msg.Detail)
		case "turn_result":
			fmt.Printf("✅ Turn %s\n", msg.Result.Record.Outcome)
			if msg.Error != "" {
				fmt.Printf("   %s\n", msg.Error)
			}
			return audio.Bytes(), nil
		}
	}
}
