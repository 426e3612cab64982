// Package interview drives the multi-turn structured-interest collection
// flow: it tracks which fields are still missing, prompts for the next
// one, gates completion behind a yes/no confirmation, and hands the
// validated record to the interest-logging collaborator exactly once.
package interview

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Nuaddam/scb-protect-test-chatbot/internal/domain"
)

// Phase is the explicit interview state, derived from conversation flags
// so that illegal flag combinations stay unrepresentable at this level.
type Phase int

const (
	PhaseCollecting Phase = iota
	PhaseAwaitingConfirmation
	PhaseDone
)

// PhaseOf derives the interview phase from conversation flags.
func PhaseOf(c *domain.Conversation) Phase {
	switch {
	case c.Done:
		return PhaseDone
	case c.AwaitingConfirmation:
		return PhaseAwaitingConfirmation
	default:
		return PhaseCollecting
	}
}

// Result is the outcome of advancing the interview by one step.
type Result struct {
	Reply  string
	Status domain.TurnStatus
}

// Machine advances the interview one step per turn. It mutates the
// conversation it is given; callers persist the state afterwards.
type Machine struct {
	gen    domain.Generator
	logger domain.InterestLogger
	log    *zap.Logger
}

// New creates an interview machine. The generator phrases questions and
// closing messages; fixed templates are used when it fails.
func New(gen domain.Generator, logger domain.InterestLogger, log *zap.Logger) *Machine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Machine{gen: gen, logger: logger, log: log}
}

const questionSystemPrompt = "You are a polite bilingual (Thai/English) insurance assistant.\n" +
	"Ask only one clear question at a time to collect the customer's information.\n" +
	"Required fields: name, age, occupation, income, product_name, memo.\n" +
	"Use the same language as the customer."

// fixedQuestions are the non-generated fallback prompts, one per field.
var fixedQuestions = map[domain.Field]string{
	domain.FieldName:        "What is your name?",
	domain.FieldAge:         "How old are you?",
	domain.FieldOccupation:  "What is your occupation?",
	domain.FieldIncome:      "What is your monthly income?",
	domain.FieldProductName: "Which product are you interested in?",
	domain.FieldMemo:        "Any notes or preferences? (You can leave this empty.)",
}

// affirmativeTokens confirm the summary when contained anywhere in the
// reply, case-insensitive. Matching is substring containment rather than
// exact equality, so a reply like "ok krub" confirms.
var affirmativeTokens = []string{"ถูกต้อง", "ยืนยัน", "yes", "correct", "ok"}

// Begin opens a fresh interview: it prompts for the first missing field
// without consuming the message that triggered the flow. Used when the
// classifier first routes a conversation into the interview.
func (m *Machine) Begin(ctx context.Context, c *domain.Conversation) (Result, error) {
	if PhaseOf(c) != PhaseCollecting {
		return m.Step(ctx, c)
	}
	return m.promptNext(ctx, c)
}

// Step advances the interview by one transition using the latest user
// message. It always returns a well-formed reply; a non-nil error is
// informational (typed per the error taxonomy) and never leaves the
// conversation in an inconsistent state.
func (m *Machine) Step(ctx context.Context, c *domain.Conversation) (Result, error) {
	switch PhaseOf(c) {
	case PhaseDone:
		// Terminal: never re-invoke the logging collaborator.
		return Result{
			Reply:  "Your information has already been recorded. Thank you!",
			Status: domain.StatusDone,
		}, nil
	case PhaseAwaitingConfirmation:
		return m.stepConfirmation(ctx, c)
	default:
		return m.stepCollecting(ctx, c)
	}
}

func (m *Machine) stepCollecting(ctx context.Context, c *domain.Conversation) (Result, error) {
	text := strings.TrimSpace(c.LastUserMessage())

	target := c.AwaitingField
	if target == "" {
		target = firstMissing(c.CustomerData)
	}
	if target != "" {
		if reason := validateField(target, text); reason != "" {
			// Stay on the same field; do not store the invalid value.
			c.AwaitingField = target
			verr := &domain.ValidationError{Field: target, Value: text, Reason: reason}
			reply := fmt.Sprintf("Sorry, that doesn't look right: %s. %s", reason, fixedQuestions[target])
			c.Append(domain.RoleAssistant, reply)
			return Result{Reply: reply, Status: domain.StatusContinuing}, verr
		}
		c.CustomerData[target] = text
		c.AwaitingField = ""
	}
	return m.promptNext(ctx, c)
}

// promptNext scans the fixed field order for the first missing field and
// prompts for it, or emits the confirmation summary when nothing is left.
func (m *Machine) promptNext(ctx context.Context, c *domain.Conversation) (Result, error) {
	var genErr error
	if next := firstMissing(c.CustomerData); next != "" {
		question := fixedQuestions[next]
		if generated, err := m.gen.Generate(ctx, questionSystemPrompt, c.Messages); err != nil {
			genErr = &domain.GenerationError{Err: err}
			m.log.Warn("question generation failed, using fixed prompt",
				zap.String("field", string(next)), zap.Error(err))
		} else if s := strings.TrimSpace(generated); s != "" {
			question = s
		}
		c.AwaitingField = next
		c.Route = domain.RouteInterview
		c.Append(domain.RoleAssistant, question)
		return Result{Reply: question, Status: domain.StatusContinuing}, genErr
	}

	record, err := RecordFrom(c.CustomerData)
	if err != nil {
		// A stored value no longer coerces; re-prompt that field.
		verr := err.(*domain.ValidationError)
		delete(c.CustomerData, verr.Field)
		c.AwaitingField = verr.Field
		c.Route = domain.RouteInterview
		reply := fmt.Sprintf("Sorry, that doesn't look right: %s. %s", verr.Reason, fixedQuestions[verr.Field])
		c.Append(domain.RoleAssistant, reply)
		return Result{Reply: reply, Status: domain.StatusContinuing}, verr
	}

	summary := Summarize(record)
	c.AwaitingConfirmation = true
	c.AwaitingField = ""
	c.Route = domain.RouteInterview
	c.Append(domain.RoleAssistant, summary)
	return Result{Reply: summary, Status: domain.StatusAwaitingConfirmation}, nil
}

func (m *Machine) stepConfirmation(ctx context.Context, c *domain.Conversation) (Result, error) {
	last := c.LastUserMessage()
	if !IsAffirmative(last) {
		// Any non-affirmative reply is treated as rejection. Collected
		// values are retained; the next turn re-detects missing fields
		// from the top of the fixed order.
		c.AwaitingConfirmation = false
		c.AwaitingField = ""
		reply := "ข้อมูลใดที่ต้องการแก้ไขบ้างครับ/ค่ะ? (Which information would you like to correct?)"
		c.Append(domain.RoleAssistant, reply)
		return Result{Reply: reply, Status: domain.StatusContinuing}, nil
	}

	record, err := RecordFrom(c.CustomerData)
	if err != nil {
		verr := err.(*domain.ValidationError)
		delete(c.CustomerData, verr.Field)
		c.AwaitingConfirmation = false
		c.AwaitingField = verr.Field
		reply := fmt.Sprintf("Sorry, that doesn't look right: %s. %s", verr.Reason, fixedQuestions[verr.Field])
		c.Append(domain.RoleAssistant, reply)
		return Result{Reply: reply, Status: domain.StatusContinuing}, verr
	}

	logged, err := m.logger.LogInterest(ctx, record)
	if err != nil {
		// Do not set done: the transition is retried on the next turn
		// without re-asking all fields.
		lerr := &domain.LoggingError{Err: err}
		m.log.Error("interest logging failed", zap.Error(err))
		reply := "ขออภัยครับ/ค่ะ ไม่สามารถบันทึกข้อมูลได้ในขณะนี้ (Sorry, we could not record your information right now. Please confirm again.)"
		c.Append(domain.RoleAssistant, reply)
		return Result{Reply: reply, Status: domain.StatusAwaitingConfirmation}, lerr
	}

	var genErr error
	closing := "Thank you for your time! Your information has been recorded successfully."
	closingPrompt := fmt.Sprintf(
		"The customer has completed the insurance interview. The recorded information is: %+v. "+
			"Write a short, polite closing message in the same language as the user. "+
			"Thank them for their time and confirm that their data was recorded successfully.", record)
	if generated, err := m.gen.Generate(ctx, closingPrompt, c.Messages); err != nil {
		genErr = &domain.GenerationError{Err: err}
		m.log.Warn("closing generation failed, using fixed template", zap.Error(err))
	} else if s := strings.TrimSpace(generated); s != "" {
		closing = s
	}

	reply := logged + "\n\n" + closing
	c.Done = true
	c.AwaitingConfirmation = false
	c.Route = domain.RouteEnd
	c.Append(domain.RoleAssistant, reply)
	return Result{Reply: reply, Status: domain.StatusDone}, genErr
}

// IsAffirmative reports whether a confirmation reply accepts the summary.
// Tokens match by substring containment (observed behavior); a bare "y"
// additionally confirms by exact match so it cannot fire inside
// unrelated words.
func IsAffirmative(reply string) bool {
	lower := strings.ToLower(strings.TrimSpace(reply))
	if lower == "y" {
		return true
	}
	for _, tok := range affirmativeTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

// firstMissing scans the fixed field order for the first field not yet
// collected. Presence is key-based: an explicitly empty memo counts as
// collected.
func firstMissing(data map[domain.Field]string) domain.Field {
	for _, f := range domain.FieldOrder {
		if _, ok := data[f]; !ok {
			return f
		}
	}
	return ""
}

// validateField checks a raw answer before it is stored. Returns an
// empty string when the value is acceptable.
func validateField(f domain.Field, value string) string {
	switch f {
	case domain.FieldAge, domain.FieldIncome:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Sprintf("%s must be a whole number", f)
		}
		if n < 0 {
			return fmt.Sprintf("%s cannot be negative", f)
		}
	case domain.FieldMemo:
		// May be empty.
	default:
		if strings.TrimSpace(value) == "" {
			return fmt.Sprintf("%s cannot be empty", f)
		}
	}
	return ""
}

// RecordFrom coerces the collected raw values into the typed record.
func RecordFrom(data map[domain.Field]string) (domain.InterestRecord, error) {
	age, err := strconv.Atoi(strings.TrimSpace(data[domain.FieldAge]))
	if err != nil {
		return domain.InterestRecord{}, &domain.ValidationError{
			Field: domain.FieldAge, Value: data[domain.FieldAge], Reason: "age must be a whole number",
		}
	}
	income, err := strconv.Atoi(strings.TrimSpace(data[domain.FieldIncome]))
	if err != nil {
		return domain.InterestRecord{}, &domain.ValidationError{
			Field: domain.FieldIncome, Value: data[domain.FieldIncome], Reason: "income must be a whole number",
		}
	}
	for _, f := range []domain.Field{domain.FieldName, domain.FieldOccupation, domain.FieldProductName} {
		if strings.TrimSpace(data[f]) == "" {
			return domain.InterestRecord{}, &domain.ValidationError{
				Field: f, Value: data[f], Reason: fmt.Sprintf("%s cannot be empty", f),
			}
		}
	}
	return domain.InterestRecord{
		Name:        strings.TrimSpace(data[domain.FieldName]),
		Age:         age,
		Occupation:  strings.TrimSpace(data[domain.FieldOccupation]),
		Income:      income,
		ProductName: strings.TrimSpace(data[domain.FieldProductName]),
		Memo:        data[domain.FieldMemo],
	}, nil
}

// Summarize renders the deterministic confirmation summary in the fixed
// field order.
func Summarize(r domain.InterestRecord) string {
	memo := r.Memo
	if strings.TrimSpace(memo) == "" {
		memo = "ไม่มี"
	}
	return "ขอสรุปข้อมูลที่ได้ดังนี้นะครับ/ค่ะ:\n" +
		fmt.Sprintf("- ชื่อ (name): %s\n", r.Name) +
		fmt.Sprintf("- อายุ (age): %d ปี\n", r.Age) +
		fmt.Sprintf("- อาชีพ (occupation): %s\n", r.Occupation) +
		fmt.Sprintf("- รายได้ (income): %d บาท\n", r.Income) +
		fmt.Sprintf("- สินค้าที่สนใจ (product_name): %s\n", r.ProductName) +
		fmt.Sprintf("- หมายเหตุ (memo): %s\n\n", memo) +
		"หากข้อมูลถูกต้อง พิมพ์ 'ถูกต้อง' เพื่อยืนยันครับ/ค่ะ (If everything is correct, reply 'yes' to confirm.)"
}
