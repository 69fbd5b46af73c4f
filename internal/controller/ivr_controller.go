package controller

import (
	"errors"
	"strings"

	"school-assist-be/internal/dto"
	"school-assist-be/internal/pkg/serverutils"
	"school-assist-be/internal/service"
	"school-assist-be/pkg/dialog/domain"
	"school-assist-be/pkg/voice"

	"github.com/gofiber/fiber/v2"
	"github.com/twilio/twilio-go/client"
	"github.com/twilio/twilio-go/twiml"
)

const (
	ivrWelcome         = "Welcome to the SAAS."
	ivrLanguageMenu    = "For Kannada, press 1. For Hindi, press 2. For English, press 3."
	ivrRequirementMenu = "To find nearby schools, press 1. For NCERT questions, press 2. For scholarships, press 3."
	ivrAskQuery        = "Please ask your question after the tone."
	ivrContinue        = "Please continue your chat!"
	ivrNotHeard        = "Sorry, I didn't catch that."
	ivrInvalidInput    = "Invalid Input. Goodbye."
	ivrNoInput         = "We didn't receive any input. Goodbye."

	twilioSignatureHeader = "X-Twilio-Signature"
)

// ivrCallEnded are the CallStatus values Twilio reports once a call is over
var ivrCallEnded = map[string]bool{"completed": true, "busy": true, "failed": true, "no-answer": true, "canceled": true}

var ivrLanguages = map[string]string{"1": voice.Kannada, "2": voice.Hindi, "3": voice.English}

var ivrRequirements = map[string]string{
	"1": domain.NameNearbySchools,
	"2": domain.NameNCERTQuestions,
	"3": domain.NameScholarships,
}

// SignatureValidator checks the X-Twilio-Signature of a webhook
type SignatureValidator interface {
	Validate(url string, params map[string]string, expectedSignature string) bool
}

type IIVRController interface {
	RegisterRoutes(r fiber.Router)
	IncomingCall(ctx *fiber.Ctx) error
	SelectLanguage(ctx *fiber.Ctx) error
	SelectRequirement(ctx *fiber.Ctx) error
	Turn(ctx *fiber.Ctx) error
	CallStatus(ctx *fiber.Ctx) error
}

type ivrController struct {
	dialogService   service.IDialogService
	languageService service.ILanguageService
	validator       SignatureValidator
	publicURL       string
}

// NewIVRController validates webhook signatures only when authToken is set.
// publicURL overrides the request host when the server sits behind a proxy.
func NewIVRController(dialogService service.IDialogService, languageService service.ILanguageService, authToken, publicURL string) IIVRController {
	c := &ivrController{
		dialogService:   dialogService,
		languageService: languageService,
		publicURL:       strings.TrimRight(publicURL, "/"),
	}
	if authToken != "" {
		v := client.NewRequestValidator(authToken)
		c.validator = &v
	}
	return c
}

func (c *ivrController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ivr")
	h.Use(c.verifySignature)
	h.Post("/call/incoming", c.IncomingCall)
	h.Post("/options/language", c.SelectLanguage)
	h.Post("/options/requirements", c.SelectRequirement)
	h.Post("/turn/:domain", c.Turn)
	h.Post("/call/status", c.CallStatus)
}

func (c *ivrController) verifySignature(ctx *fiber.Ctx) error {
	if c.validator == nil {
		return ctx.Next()
	}

	base := c.publicURL
	if base == "" {
		base = ctx.BaseURL()
	}
	params := make(map[string]string)
	ctx.Request().PostArgs().VisitAll(func(k, v []byte) {
		params[string(k)] = string(v)
	})

	if !c.validator.Validate(base+ctx.OriginalURL(), params, ctx.Get(twilioSignatureHeader)) {
		return fiber.NewError(fiber.StatusForbidden, "Invalid Twilio signature")
	}
	return ctx.Next()
}

func (c *ivrController) IncomingCall(ctx *fiber.Ctx) error {
	return c.render(ctx,
		&twiml.VoiceSay{Message: ivrWelcome},
		&twiml.VoiceGather{
			Action:        "/api/ivr/options/language",
			Method:        fiber.MethodPost,
			NumDigits:     "1",
			Timeout:       "10",
			InnerElements: []twiml.Element{&twiml.VoiceSay{Message: ivrLanguageMenu}},
		},
		&twiml.VoiceSay{Message: ivrNoInput},
		&twiml.VoiceHangup{},
	)
}

func (c *ivrController) SelectLanguage(ctx *fiber.Ctx) error {
	language, ok := ivrLanguages[ctx.FormValue("Digits")]
	if !ok {
		return c.render(ctx, &twiml.VoiceSay{Message: ivrInvalidInput}, &twiml.VoiceHangup{})
	}

	if _, err := c.languageService.SetLanguage(ctx.UserContext(), ctx.FormValue("CallSid"), language); err != nil {
		return err
	}

	return c.render(ctx,
		&twiml.VoiceGather{
			Action:        "/api/ivr/options/requirements",
			Method:        fiber.MethodPost,
			NumDigits:     "1",
			Timeout:       "10",
			InnerElements: []twiml.Element{&twiml.VoiceSay{Message: ivrRequirementMenu}},
		},
		&twiml.VoiceSay{Message: ivrNoInput},
		&twiml.VoiceHangup{},
	)
}

func (c *ivrController) SelectRequirement(ctx *fiber.Ctx) error {
	domainName, ok := ivrRequirements[ctx.FormValue("Digits")]
	if !ok {
		return c.render(ctx, &twiml.VoiceSay{Message: ivrInvalidInput}, &twiml.VoiceHangup{})
	}

	language := c.callLanguage(ctx)
	return c.render(ctx, c.speechGather(domainName, language, ivrAskQuery), &twiml.VoiceSay{Message: ivrNoInput}, &twiml.VoiceHangup{})
}

// Turn runs the recognised speech through the assistant, reads the reply out
// and gathers the next utterance on the same route.
func (c *ivrController) Turn(ctx *fiber.Ctx) error {
	domainName := ctx.Params("domain")
	language := c.callLanguage(ctx)

	res, err := c.dialogService.HandleTurn(ctx.UserContext(), domainName, ctx.FormValue("CallSid"), dto.AskRequest{
		Prompt:  ctx.FormValue("SpeechResult"),
		Channel: dto.ChannelIVR,
	})

	reply := ivrNotHeard
	switch {
	case err == nil:
		reply = res.Response
	case errors.Is(err, service.ErrUnknownDomain):
		return fiber.ErrNotFound
	case !errors.Is(err, serverutils.ErrValidation):
		reply = serverutils.InternalErrorMessage
	}

	return c.render(ctx,
		&twiml.VoiceSay{Message: reply, Language: voice.Locale(language)},
		c.speechGather(domainName, language, ivrContinue),
		&twiml.VoiceSay{Message: ivrNoInput},
		&twiml.VoiceHangup{},
	)
}

// CallStatus is the Twilio status callback; a finished call ends its session
func (c *ivrController) CallStatus(ctx *fiber.Ctx) error {
	callSid := ctx.FormValue("CallSid")
	if callSid != "" && ivrCallEnded[ctx.FormValue("CallStatus")] {
		if err := c.dialogService.EndSession(ctx.UserContext(), callSid); err != nil {
			return err
		}
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func (c *ivrController) speechGather(domainName, language, prompt string) *twiml.VoiceGather {
	return &twiml.VoiceGather{
		Input:         "speech",
		Action:        "/api/ivr/turn/" + domainName,
		Method:        fiber.MethodPost,
		Language:      voice.Locale(language),
		SpeechTimeout: "auto",
		InnerElements: []twiml.Element{&twiml.VoiceSay{Message: prompt, Language: voice.Locale(language)}},
	}
}

// callLanguage falls back to English when the call has no stored language
func (c *ivrController) callLanguage(ctx *fiber.Ctx) string {
	language, err := c.languageService.GetLanguage(ctx.UserContext(), ctx.FormValue("CallSid"))
	if err != nil {
		return voice.English
	}
	return language
}

func (c *ivrController) render(ctx *fiber.Ctx, verbs ...twiml.Element) error {
	doc, err := twiml.Voice(verbs)
	if err != nil {
		return err
	}
	ctx.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	return ctx.SendString(doc)
}
