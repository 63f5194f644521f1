package usecase

import (
	"strings"

	appdomain "careertrack-backend/internal/application/domain"
	"careertrack-backend/pkg/provider"
)

// Matching score weights. The total is capped at 1.0.
const (
	domainMatchScore  = 0.6
	companyMatchScore = 0.3
	roleMatchScore    = 0.1
)

// Consumer mail services never identify an employer, so their domains are
// discarded before domain matching.
var skipDomains = map[string]struct{}{
	"gmail.com":      {},
	"yahoo.com":      {},
	"hotmail.com":    {},
	"outlook.com":    {},
	"aol.com":        {},
	"icloud.com":     {},
	"protonmail.com": {},
}

// MatchMessage scores a message against every tracked application and returns
// the best match with its score, or (nil, 0) when nothing scores above zero.
//
// Ties go to the first application in the input ordering. That makes matching
// order-dependent: deterministic within a cycle, but not a guaranteed total
// order across application-list changes.
func MatchMessage(msg provider.RawMessage, applications []appdomain.Application) (*appdomain.Application, float64) {
	if msg.SenderEmail == "" || len(applications) == 0 {
		return nil, 0.0
	}

	combinedText := strings.ToLower(msg.Subject + " " + msg.BodyPreview)
	senderDomain := senderDomainForMatching(msg.SenderEmail)

	var best *appdomain.Application
	bestScore := 0.0

	for i := range applications {
		app := &applications[i]
		company := strings.ToLower(app.Company)
		if company == "" {
			continue
		}

		score := 0.0

		if senderDomain != "" {
			companySlug := slugify(company)
			domainSlug := strings.SplitN(senderDomain, ".", 2)[0]
			if strings.Contains(companySlug, domainSlug) || strings.Contains(domainSlug, companySlug) {
				score += domainMatchScore
			}
		}

		if strings.Contains(combinedText, company) {
			score += companyMatchScore
		}

		role := strings.ToLower(app.Role)
		if role != "" && strings.Contains(combinedText, role) {
			score += roleMatchScore
		}

		if score > bestScore {
			bestScore = score
			best = app
		}
	}

	if bestScore > 1.0 {
		bestScore = 1.0
	}
	return best, bestScore
}

// senderDomainForMatching extracts the sender's domain, treating consumer
// mail domains as absent.
func senderDomainForMatching(senderEmail string) string {
	at := strings.LastIndex(senderEmail, "@")
	if at < 0 || at == len(senderEmail)-1 {
		return ""
	}
	domain := strings.ToLower(senderEmail[at+1:])
	if _, skip := skipDomains[domain]; skip {
		return ""
	}
	return domain
}

func slugify(company string) string {
	replacer := strings.NewReplacer(" ", "", ",", "", ".", "")
	return replacer.Replace(company)
}
