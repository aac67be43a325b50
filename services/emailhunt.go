package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/miekg/dns"

	"maps-scraper/utils"
)

// maxBodyBytes caps how much of a website we read when hunting for emails.
const maxBodyBytes = 2 << 20

var emailRegex = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

// mxResolvers are queried in order when MX validation is enabled.
var mxResolvers = []string{"8.8.8.8:53", "1.1.1.1:53"}

// EmailHunter fetches a business website and scans it for contact emails.
// Lookups are bounded by the client timeout and never report an error to the
// caller: a failed fetch simply finds nothing.
type EmailHunter struct {
	client     *http.Client
	logger     *utils.Logger
	validateMX bool
}

// NewEmailHunter creates an EmailHunter with the given per-lookup timeout.
func NewEmailHunter(timeout time.Duration, validateMX bool, logger *utils.Logger) *EmailHunter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &EmailHunter{
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
		validateMX: validateMX,
	}
}

// FindEmails downloads the page at websiteURL and returns every distinct
// email found, comma-joined. The second return is false when nothing usable
// was found.
func (h *EmailHunter) FindEmails(ctx context.Context, websiteURL string) (string, bool) {
	target := ensureScheme(websiteURL)
	if target == "" {
		return "", false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		h.logger.Debug("[emailhunt] bad URL %q: %v", websiteURL, err)
		return "", false
	}

	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.Debug("[emailhunt] fetch %q failed: %v", target, err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		h.logger.Debug("[emailhunt] fetch %q returned %d", target, resp.StatusCode)
		return "", false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		h.logger.Debug("[emailhunt] read %q failed: %v", target, err)
		return "", false
	}

	seen := make(map[string]struct{})
	var emails []string
	add := func(addr string) {
		addr = strings.ToLower(strings.TrimSpace(addr))
		if addr == "" {
			return
		}
		if _, dup := seen[addr]; dup {
			return
		}
		seen[addr] = struct{}{}
		emails = append(emails, addr)
	}

	for _, match := range emailRegex.FindAllString(string(body), -1) {
		add(match)
	}

	// Mailto links can carry addresses the text regex misses,
	// e.g. inside attributes.
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body))); err == nil {
		doc.Find(`a[href^="mailto:"]`).Each(func(i int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			addr := strings.TrimPrefix(href, "mailto:")
			if idx := strings.Index(addr, "?"); idx != -1 {
				addr = addr[:idx]
			}
			add(addr)
		})
	}

	if h.validateMX {
		emails = h.filterByMX(emails)
	}

	if len(emails) == 0 {
		return "", false
	}
	sort.Strings(emails)
	return strings.Join(emails, ", "), true
}

// filterByMX drops addresses whose domain has no MX record. A resolver
// failure keeps the address; only a definite empty answer rejects it.
func (h *EmailHunter) filterByMX(emails []string) []string {
	verified := make(map[string]bool)
	var kept []string
	for _, addr := range emails {
		at := strings.LastIndex(addr, "@")
		if at == -1 {
			continue
		}
		domain := addr[at+1:]
		ok, cached := verified[domain]
		if !cached {
			ok = h.hasMX(domain)
			verified[domain] = ok
		}
		if ok {
			kept = append(kept, addr)
		}
	}
	return kept
}

func (h *EmailHunter) hasMX(domain string) bool {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), dns.TypeMX)

	client := &dns.Client{Timeout: 3 * time.Second}
	for _, resolver := range mxResolvers {
		resp, _, err := client.Exchange(msg, resolver)
		if err != nil {
			h.logger.Debug("[emailhunt] MX lookup for %s via %s failed: %v", domain, resolver, err)
			continue
		}
		if resp.Rcode != dns.RcodeSuccess {
			return false
		}
		for _, ans := range resp.Answer {
			if _, isMX := ans.(*dns.MX); isMX {
				return true
			}
		}
		return false
	}
	// Every resolver failed; give the address the benefit of the doubt.
	return true
}

func ensureScheme(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return fmt.Sprintf("https://%s", raw)
}
