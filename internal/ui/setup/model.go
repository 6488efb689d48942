package setup

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/reply-desk/internal/credential"
	"github.com/nhle/reply-desk/internal/mailcheck"
	"github.com/nhle/reply-desk/internal/model"
	"github.com/nhle/reply-desk/internal/theme"
)

// DoneMsg is sent after settings were saved. VaultErr is set when the
// secrets could not be cached in the keyring.
type DoneMsg struct {
	VaultErr error
}

// CancelMsg is sent when the operator leaves the wizard without saving.
type CancelMsg struct{}

// Saver stores settings and the mail account on the backend.
type Saver interface {
	Save(ctx context.Context, s model.Settings, account *model.MailAccount) error
}

// Checker tests an IMAP login.
type Checker interface {
	Check(ctx context.Context, a model.MailAccount) (mailcheck.Result, error)
}

// Vault caches secrets between runs.
type Vault interface {
	Load() (credential.Secrets, error)
	Store(s credential.Secrets) error
}

type mode int

const (
	modeForm mode = iota
	modeChecking
	modeCheckResult
	modeSaving
)

type checkResultMsg struct {
	res mailcheck.Result
	err error
}

type savedMsg struct {
	err      error
	vaultErr error
}

// bindings hold the form values as typed.
type bindings struct {
	email    string
	imapHost string
	imapPort string
	smtpHost string
	smtpPort string
	username string
	password string
	useSSL   bool

	deepseekKey   string
	deepseekURL   string
	deepseekModel string

	baiduAppID  string
	baiduSecret string
	targetLang  string
	interval    string

	testIMAP bool
}

func fromBundle(b *model.SettingsBundle) bindings {
	s := model.SettingsFromMap(nil)
	if b != nil {
		s = b.Settings
	}
	fb := bindings{
		imapPort:      "993",
		smtpPort:      "465",
		useSSL:        true,
		deepseekKey:   s.DeepseekAPIKey,
		deepseekURL:   s.DeepseekBaseURL,
		deepseekModel: s.DeepseekModel,
		baiduAppID:    s.BaiduAppID,
		baiduSecret:   s.BaiduSecret,
		targetLang:    s.TargetLang,
		interval:      strconv.Itoa(s.FetchInterval),
		testIMAP:      true,
	}
	if b != nil && b.Account != nil {
		a := b.Account
		fb.email = a.Email
		fb.imapHost = a.IMAPHost
		fb.smtpHost = a.SMTPHost
		fb.username = a.Username
		fb.password = a.Password
		fb.useSSL = a.UseSSL
		if a.IMAPPort > 0 {
			fb.imapPort = strconv.Itoa(a.IMAPPort)
		}
		if a.SMTPPort > 0 {
			fb.smtpPort = strconv.Itoa(a.SMTPPort)
		}
	}
	return fb
}

// withSecrets fills secrets the backend did not return.
func (fb bindings) withSecrets(s credential.Secrets) bindings {
	if fb.password == "" {
		fb.password = s.MailPassword
	}
	if fb.deepseekKey == "" {
		fb.deepseekKey = s.DeepseekKey
	}
	if fb.baiduSecret == "" {
		fb.baiduSecret = s.BaiduSecret
	}
	return fb
}

func (fb bindings) settings() model.Settings {
	interval, _ := strconv.Atoi(strings.TrimSpace(fb.interval))
	return model.Settings{
		FetchInterval:   interval,
		TargetLang:      strings.TrimSpace(fb.targetLang),
		BaiduAppID:      strings.TrimSpace(fb.baiduAppID),
		BaiduSecret:     strings.TrimSpace(fb.baiduSecret),
		DeepseekAPIKey:  strings.TrimSpace(fb.deepseekKey),
		DeepseekBaseURL: strings.TrimSpace(fb.deepseekURL),
		DeepseekModel:   strings.TrimSpace(fb.deepseekModel),
	}
}

func (fb bindings) account() model.MailAccount {
	imapPort, _ := strconv.Atoi(strings.TrimSpace(fb.imapPort))
	smtpPort, _ := strconv.Atoi(strings.TrimSpace(fb.smtpPort))
	return model.MailAccount{
		Email:    strings.TrimSpace(fb.email),
		IMAPHost: strings.TrimSpace(fb.imapHost),
		IMAPPort: imapPort,
		SMTPHost: strings.TrimSpace(fb.smtpHost),
		SMTPPort: smtpPort,
		Username: strings.TrimSpace(fb.username),
		Password: fb.password,
		UseSSL:   fb.useSSL,
	}
}

func (fb bindings) secrets() credential.Secrets {
	return credential.Secrets{
		MailPassword: fb.password,
		DeepseekKey:  strings.TrimSpace(fb.deepseekKey),
		BaiduSecret:  strings.TrimSpace(fb.baiduSecret),
	}
}

// Model is the first-run and settings wizard.
type Model struct {
	saver   Saver
	checker Checker
	vault   Vault

	mode     mode
	form     *huh.Form
	fb       *bindings
	spinner  spinner.Model
	checkRes mailcheck.Result
	checkErr error
	status   string
	width    int
	height   int
}

// New creates a wizard. vault may be nil.
func New(saver Saver, checker Checker, vault Vault, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		saver:   saver,
		checker: checker,
		vault:   vault,
		fb:      &bindings{},
		spinner: sp,
		width:   width,
		height:  height,
	}
}

// Start prefills the form from the loaded bundle and the keyring.
func (m *Model) Start(b *model.SettingsBundle) tea.Cmd {
	fb := fromBundle(b)
	if m.vault != nil {
		if s, err := m.vault.Load(); err == nil {
			fb = fb.withSecrets(s)
		}
	}
	*m.fb = fb
	m.status = ""
	m.checkErr = nil
	m.form = m.buildForm()
	m.mode = modeForm
	return m.form.Init()
}

func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Email address").Placeholder("support@example.com").
				Value(&m.fb.email).Validate(validateRequired("Email")),
			huh.NewInput().Title("IMAP host").Placeholder("imap.example.com").
				Value(&m.fb.imapHost).Validate(validateRequired("IMAP host")),
			huh.NewInput().Title("IMAP port").Placeholder("993").
				Value(&m.fb.imapPort).Validate(validatePort),
			huh.NewInput().Title("SMTP host").Placeholder("smtp.example.com").
				Value(&m.fb.smtpHost).Validate(validateRequired("SMTP host")),
			huh.NewInput().Title("SMTP port").Placeholder("465").
				Value(&m.fb.smtpPort).Validate(validatePort),
			huh.NewInput().Title("Username").Description("Leave blank to log in with the email address").
				Value(&m.fb.username),
			huh.NewInput().Title("Password").Description("Account or app password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).Validate(validateRequired("Password")),
			huh.NewConfirm().Title("Use SSL").Affirmative("Yes").Negative("No").
				Value(&m.fb.useSSL),
		).Title("Mail account"),
		huh.NewGroup(
			huh.NewInput().Title("DeepSeek API key").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.deepseekKey).Validate(validateRequired("API key")),
			huh.NewInput().Title("DeepSeek base URL").
				Value(&m.fb.deepseekURL),
			huh.NewInput().Title("DeepSeek model").
				Value(&m.fb.deepseekModel),
		).Title("AI"),
		huh.NewGroup(
			huh.NewInput().Title("Baidu app id").Value(&m.fb.baiduAppID),
			huh.NewInput().Title("Baidu secret").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.baiduSecret),
			huh.NewInput().Title("Translate to").Placeholder(model.DefaultTargetLang).
				Value(&m.fb.targetLang),
			huh.NewInput().Title("Fetch interval (seconds)").
				Value(&m.fb.interval).Validate(validateInterval),
			huh.NewConfirm().Title("Test the IMAP login before saving?").
				Value(&m.fb.testIMAP),
		).Title("Translation and sync"),
	).WithWidth(m.formWidth())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case checkResultMsg:
		m.checkRes, m.checkErr = msg.res, msg.err
		if msg.err == nil {
			return m.save()
		}
		m.mode = modeCheckResult
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Save failed: %v", msg.err)
			m.mode = modeCheckResult
			m.checkErr = nil
			return m, nil
		}
		vaultErr := msg.vaultErr
		return m, func() tea.Msg { return DoneMsg{VaultErr: vaultErr} }

	case spinner.TickMsg:
		if m.mode != modeChecking && m.mode != modeSaving {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.mode == modeCheckResult {
			return m.handleResultKey(msg)
		}
		if m.mode == modeChecking || m.mode == modeSaving {
			return m, nil
		}
	}

	if m.mode != modeForm || m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		if m.fb.testIMAP {
			return m.check()
		}
		return m.save()
	case huh.StateAborted:
		return m, func() tea.Msg { return CancelMsg{} }
	}
	return m, cmd
}

func (m Model) handleResultKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		return m.check()
	case "s":
		return m.save()
	case "esc", "enter":
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()
	}
	return m, nil
}

func (m Model) check() (Model, tea.Cmd) {
	m.mode = modeChecking
	m.status = ""
	c := m.checker
	account := m.fb.account()
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		res, err := c.Check(context.Background(), account)
		return checkResultMsg{res: res, err: err}
	})
}

func (m Model) save() (Model, tea.Cmd) {
	m.mode = modeSaving
	saver, vault := m.saver, m.vault
	fb := *m.fb
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		account := fb.account()
		if err := saver.Save(context.Background(), fb.settings(), &account); err != nil {
			return savedMsg{err: err}
		}
		var vaultErr error
		if vault != nil {
			vaultErr = vault.Store(fb.secrets())
		}
		return savedMsg{vaultErr: vaultErr}
	})
}

// View renders the wizard.
func (m Model) View() string {
	style := lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height)
	title := theme.TitleStyle.MarginBottom(1).Render("Reply Desk setup")

	switch m.mode {
	case modeChecking:
		return style.Render(title + "\n" + m.spinner.View() + " Testing IMAP login...")
	case modeSaving:
		return style.Render(title + "\n" + m.spinner.View() + " Saving settings...")
	case modeCheckResult:
		return style.Render(title + "\n" + m.viewResult())
	}
	if m.form == nil {
		return style.Render(title)
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, title, m.form.View()))
}

func (m Model) viewResult() string {
	hints := theme.DimmedStyle.Render("r retry | s save anyway | esc edit")
	if m.status != "" {
		return lipgloss.NewStyle().Bold(true).Foreground(theme.ColorRed).Render(m.status) +
			"\n\n" + hints
	}
	if m.checkErr == nil {
		return ""
	}
	head := "Connection failed"
	if mailcheck.IsAuthError(m.checkErr) {
		head = "Login rejected"
	}
	return lipgloss.NewStyle().Bold(true).Foreground(theme.ColorRed).Render(head) +
		"\n\n" + m.checkErr.Error() + "\n\n" + hints
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth())
	}
}

func (m Model) formWidth() int {
	return min(max(m.width-6, 40), 90)
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validatePort(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("port must be a number")
	}
	if n <= 0 || n > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	return nil
}

func validateInterval(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("interval must be a positive number of seconds")
	}
	return nil
}
