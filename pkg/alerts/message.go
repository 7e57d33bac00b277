// Package alerts formats status change notifications and delivers them to
// a configured webhook.
package alerts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ZSanhu/port-guardian/pkg/models"
)

// Platform identifies the webhook service a payload is shaped for.
type Platform string

const (
	PlatformFeishu   Platform = "feishu"
	PlatformDingTalk Platform = "dingtalk"
	PlatformGeneric  Platform = "generic"
)

const (
	contentTypeJSON = "application/json"
	contentTypeText = "text/plain; charset=utf-8"

	timeLayout = "2006-01-02 15:04:05"
)

// Message is a formatted notification ready for delivery.
type Message struct {
	Platform    Platform
	ContentType string
	Body        []byte
}

// platformMarkers map URL substrings onto platforms. Order matters: the
// first marker found in the URL decides.
var platformMarkers = []struct {
	platform Platform
	markers  []string
}{
	{platform: PlatformFeishu, markers: []string{"feishu.cn", "larksuite.com"}},
	{platform: PlatformDingTalk, markers: []string{"dingtalk.com"}},
}

// DetectPlatform infers the webhook platform from its URL.
func DetectPlatform(url string) Platform {
	for _, pm := range platformMarkers {
		for _, marker := range pm.markers {
			if strings.Contains(url, marker) {
				return pm.platform
			}
		}
	}

	return PlatformGeneric
}

// Formatter renders status changes into the payload shape the receiving
// platform expects.
type Formatter struct {
	platform Platform
	msgType  string
}

// NewFormatter builds a formatter for the given webhook URL. msgType is
// passed through to platforms that carry one.
func NewFormatter(url, msgType string) *Formatter {
	return &Formatter{
		platform: DetectPlatform(url),
		msgType:  msgType,
	}
}

type feishuMessage struct {
	MsgType string        `json:"msg_type"`
	Content feishuContent `json:"content"`
}

type feishuContent struct {
	Text string `json:"text"`
}

type dingTalkMessage struct {
	MsgType string       `json:"msgtype"`
	Text    dingTalkText `json:"text"`
}

type dingTalkText struct {
	Content string `json:"content"`
}

type genericMessage struct {
	MsgType        string `json:"msg_type"`
	Title          string `json:"title"`
	ServerName     string `json:"server_name"`
	Host           string `json:"host"`
	Port           int    `json:"port"`
	Protocol       string `json:"protocol"`
	Status         string `json:"status"`
	PreviousStatus string `json:"previous_status"`
	ResponseTimeMS int64  `json:"response_time_ms"`
	CheckedAt      string `json:"checked_at"`
	Timestamp      int64  `json:"timestamp"`
}

// Format renders a status change for the formatter's platform.
func (f *Formatter) Format(change *models.StatusChange) (*Message, error) {
	switch f.platform {
	case PlatformFeishu:
		return marshalMessage(f.platform, feishuMessage{
			MsgType: f.msgType,
			Content: feishuContent{Text: textBody(change)},
		})
	case PlatformDingTalk:
		// DingTalk bots only accept a fixed msgtype for plain content.
		return marshalMessage(f.platform, dingTalkMessage{
			MsgType: "text",
			Text:    dingTalkText{Content: textBody(change)},
		})
	default:
		return f.generic(change)
	}
}

func (f *Formatter) generic(change *models.StatusChange) (*Message, error) {
	if f.msgType == "text" {
		return &Message{
			Platform:    PlatformGeneric,
			ContentType: contentTypeText,
			Body:        []byte(textBody(change)),
		}, nil
	}

	return marshalMessage(PlatformGeneric, genericMessage{
		MsgType:        f.msgType,
		Title:          title(change),
		ServerName:     change.Endpoint.Name,
		Host:           change.Endpoint.Host,
		Port:           change.Endpoint.Port,
		Protocol:       string(change.Endpoint.Protocol),
		Status:         strings.ToUpper(string(change.Current)),
		PreviousStatus: strings.ToUpper(string(change.Previous)),
		ResponseTimeMS: change.RespTime.Milliseconds(),
		CheckedAt:      change.At.Format(timeLayout),
		Timestamp:      change.At.Unix(),
	})
}

func marshalMessage(platform Platform, payload interface{}) (*Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification: %w", err)
	}

	return &Message{
		Platform:    platform,
		ContentType: contentTypeJSON,
		Body:        body,
	}, nil
}

func title(change *models.StatusChange) string {
	if change.Current == models.StatusUp {
		return "✅ Server port recovered"
	}

	return "❌ Server port down"
}

func textBody(change *models.StatusChange) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", title(change))
	fmt.Fprintf(&b, "Server: %s\n", change.Endpoint.Name)
	fmt.Fprintf(&b, "Host: %s\n", change.Endpoint.Host)
	fmt.Fprintf(&b, "Port: %d\n", change.Endpoint.Port)
	fmt.Fprintf(&b, "Protocol: %s\n", change.Endpoint.Protocol)
	fmt.Fprintf(&b, "Status: %s (was %s)\n",
		strings.ToUpper(string(change.Current)), change.Previous)
	fmt.Fprintf(&b, "Response time: %dms\n", change.RespTime.Milliseconds())
	fmt.Fprintf(&b, "Checked at: %s", change.At.Format(timeLayout))

	return b.String()
}
