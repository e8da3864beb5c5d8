package filter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/mikey/phish-detector/internal/core"
)

// PostfixFilter implements a Postfix content filter: it accepts messages over
// SMTP, classifies them, injects phishing headers and relays the result back
// to Postfix on a second listener.
type PostfixFilter struct {
	service       *core.DetectorService
	logger        *zap.Logger
	listenAddr    string
	server        *smtp.Server
	blockPhishing bool
	statusHeader  string
	scoreHeader   string
	reasonHeader  string
	relayAddr     string
	relayPort     int
	relayEnabled  bool
	subjectPrefix string
	modifySubject bool
}

// NewPostfixFilter creates a new Postfix content filter
func NewPostfixFilter(
	service *core.DetectorService,
	logger *zap.Logger,
	listenAddr string,
	blockPhishing bool,
	statusHeader string,
	scoreHeader string,
	reasonHeader string,
	relayAddr string,
	relayPort int,
	relayEnabled bool,
	subjectPrefix string,
	modifySubject bool,
) *PostfixFilter {
	if subjectPrefix == "" && modifySubject {
		subjectPrefix = "[**PHISHING**] "
	}

	return &PostfixFilter{
		service:       service,
		logger:        logger,
		listenAddr:    listenAddr,
		blockPhishing: blockPhishing,
		statusHeader:  statusHeader,
		scoreHeader:   scoreHeader,
		reasonHeader:  reasonHeader,
		relayAddr:     relayAddr,
		relayPort:     relayPort,
		relayEnabled:  relayEnabled,
		subjectPrefix: subjectPrefix,
		modifySubject: modifySubject,
	}
}

// Start starts the SMTP listener
func (f *PostfixFilter) Start() error {
	f.server = smtp.NewServer(&smtpBackend{filter: f})

	f.server.Addr = f.listenAddr
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024
	f.server.MaxRecipients = 50
	f.server.AllowInsecureAuth = true

	f.logger.Info("Postfix filter starting", zap.String("address", f.listenAddr))

	go func() {
		if err := f.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				f.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP listener
func (f *PostfixFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessEmail classifies an email directly, mainly for tests
func (f *PostfixFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.ClassificationResult, error) {
	return f.service.ClassifyEmail(ctx, email)
}

// sendToPostfix relays the processed message back to Postfix
func (f *PostfixFilter) sendToPostfix(sender string, recipients []string, emailData []byte) error {
	relayAddr := fmt.Sprintf("%s:%d", f.relayAddr, f.relayPort)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", relayAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to Postfix: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
		} else {
			recipientOK = true
		}
	}
	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(emailData); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}

	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *PostfixFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		filter:     b.filter,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *PostfixFilter
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// AuthPlain handles PLAIN authentication (not needed for the filter)
func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data classifies the message, injects headers and relays it onward
func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	msg, err := mail.ReadMessage(bytes.NewReader(rawData))
	if err != nil {
		s.filter.logger.Error("Failed to parse email message", zap.Error(err))
		return err
	}

	textContent, err := extractTextFromMessage(msg)
	if err != nil {
		s.filter.logger.Error("Failed to extract text content", zap.Error(err))
		return err
	}

	email := &core.Email{
		Headers: make(map[string][]string),
		Body:    textContent,
		From:    s.sender,
		To:      s.recipients,
	}
	for key, values := range msg.Header {
		email.Headers[key] = values
		if strings.EqualFold(key, "Subject") && len(values) > 0 {
			email.Subject = values[0]
		}
	}

	senderDomain := "unknown"
	if parts := strings.Split(email.From, "@"); len(parts) == 2 {
		senderDomain = parts[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, analysisErr := s.filter.service.ClassifyEmail(ctx, email)
	if analysisErr != nil {
		s.filter.logger.Error("Failed to classify email",
			zap.Error(analysisErr),
			zap.String("sender", email.From),
			zap.String("sender_domain", senderDomain))

		// Fail open: deliver unclassified rather than lose mail
		result = &core.ClassificationResult{
			IsPhishing:  false,
			Label:       core.LabelLegitimate,
			Explanation: fmt.Sprintf("Error during classification: %v", analysisErr),
			ModelUsed:   "error",
			AnalyzedAt:  time.Now(),
		}
	}

	if result.IsPhishing && s.filter.blockPhishing && analysisErr == nil {
		s.filter.logger.Info("Rejecting phishing email",
			zap.String("from", email.From),
			zap.String("sender_domain", senderDomain),
			zap.Float64("phishing_probability", result.PhishingProbability),
			zap.String("reason", result.Explanation),
			zap.String("model", result.ModelUsed))
		return fmt.Errorf("550 Rejected as phishing (probability: %.2f)", result.PhishingProbability)
	}

	modified := s.rewriteMessage(msg, rawData, result, analysisErr)

	if s.filter.relayEnabled {
		if err := s.filter.sendToPostfix(s.sender, s.recipients, modified); err != nil {
			s.filter.logger.Error("Failed to send email back to Postfix",
				zap.Error(err),
				zap.String("sender", email.From))
			return err
		}
	} else {
		s.filter.logger.Warn("Postfix relay disabled, message not forwarded")
	}

	s.filter.logger.Info("Processed email",
		zap.String("from", email.From),
		zap.String("sender_domain", senderDomain),
		zap.Bool("is_phishing", result.IsPhishing),
		zap.Float64("phishing_probability", result.PhishingProbability),
		zap.String("model", result.ModelUsed))

	return nil
}

// rewriteMessage prepends the phishing headers, optionally tags the subject,
// and re-attaches the original body bytes so MIME parts survive untouched
func (s *smtpSession) rewriteMessage(msg *mail.Message, rawData []byte, result *core.ClassificationResult, analysisErr error) []byte {
	var out bytes.Buffer

	fmt.Fprintf(&out, "%s: %t\r\n", s.filter.statusHeader, result.IsPhishing)
	fmt.Fprintf(&out, "%s: %.4f\r\n", s.filter.scoreHeader, result.PhishingProbability)
	fmt.Fprintf(&out, "%s: %s\r\n", s.filter.reasonHeader, result.Explanation)
	if analysisErr != nil {
		fmt.Fprintf(&out, "X-Phishing-Analysis-Error: %s\r\n", analysisErr.Error())
	}

	tagSubject := result.IsPhishing && s.filter.modifySubject && s.filter.subjectPrefix != ""
	if tagSubject {
		originalSubject := msg.Header.Get("Subject")
		decodedSubject, err := decodeEncodedHeader(originalSubject)
		if err != nil {
			decodedSubject = originalSubject
		}
		if !strings.HasPrefix(decodedSubject, s.filter.subjectPrefix) {
			fmt.Fprintf(&out, "Subject: %s%s\r\n", s.filter.subjectPrefix, decodedSubject)
			for key, values := range msg.Header {
				if strings.EqualFold(key, "Subject") {
					continue
				}
				for _, value := range values {
					fmt.Fprintf(&out, "%s: %s\r\n", key, value)
				}
			}
		} else {
			tagSubject = false
		}
	}
	if !tagSubject {
		for key, values := range msg.Header {
			for _, value := range values {
				fmt.Fprintf(&out, "%s: %s\r\n", key, value)
			}
		}
	}
	fmt.Fprintf(&out, "\r\n")

	// Splice in the original body bytes to preserve attachments
	if idx := bytes.Index(rawData, []byte("\r\n\r\n")); idx >= 0 {
		out.Write(rawData[idx+4:])
	} else if idx := bytes.Index(rawData, []byte("\n\n")); idx >= 0 {
		out.Write(rawData[idx+2:])
	} else if body, err := io.ReadAll(msg.Body); err == nil {
		out.Write(body)
	}

	return out.Bytes()
}

// Logout handles SMTP logout
func (s *smtpSession) Logout() error {
	return nil
}
