package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"draftdesk/internal/auth"
	"draftdesk/internal/config"
	"draftdesk/internal/domain"
	models "draftdesk/internal/domain/models/docsystem"
	docsysSvc "draftdesk/internal/domain/services/docsystem"
	"draftdesk/internal/gateway"
	"draftdesk/internal/service/docsystem"
	"draftdesk/internal/service/docsystem/converter"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorBlue   = "\033[34m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// genericFailureMessage is shown when the backend gave no usable detail.
const genericFailureMessage = "Something went wrong. Check the connection and try again."

type CLI struct {
	ctx      context.Context
	cfg      *config.Config
	client   *gateway.Client
	sessions *auth.SessionManager
	logger   *slog.Logger

	outMu sync.Mutex
	out   io.Writer

	userID string
	sync   *docsystem.Synchronizer
	drafts docsysSvc.DraftService
	scope  *string // folder the next question is asked over, nil = all

	watch  atomic.Bool
	purged atomic.Bool
}

func newCLI(ctx context.Context, cfg *config.Config, client *gateway.Client, sessions *auth.SessionManager, out io.Writer, logger *slog.Logger) *CLI {
	cli := &CLI{
		ctx:      ctx,
		cfg:      cfg,
		client:   client,
		sessions: sessions,
		out:      out,
		logger:   logger,
	}
	// Runs inside a backend call; only flag it here and rebuild between commands.
	sessions.OnPurge(func() { cli.purged.Store(true) })
	return cli
}

// start (re)builds the services for the current identity and loads the tree.
func (cli *CLI) start() error {
	cli.close()

	cli.userID = cli.sessions.UserID(cli.cfg.UserID)
	logger := cli.logger.With("user_id", cli.userID)

	validator := docsystem.NewUploadValidator(cli.cfg.MaxUploadBytes, cli.cfg.VerifyPDF, logger)
	cli.sync = docsystem.NewSynchronizer(
		docsystem.NewFolderCache(cli.client, cli.userID, logger),
		docsystem.NewStatusTracker(cli.client, cli.userID, cli.cfg.StatusConcurrency, logger),
		validator,
		docsystem.SynchronizerConfig{
			PollInterval:     cli.cfg.PollInterval,
			IntakeFolderName: cli.cfg.IntakeFolderName,
		},
		logger.With("component", "synchronizer"),
	)
	cli.sync.Subscribe(cli.onEvent)
	cli.drafts = docsystem.NewDraftService(cli.client, converter.NewRegistry(), cli.userID, cli.cfg.TopK, logger)
	cli.scope = nil

	if err := cli.sync.Start(cli.ctx); err != nil {
		cli.printErr("Failed to load folders", err)
		return err
	}
	return nil
}

func (cli *CLI) close() {
	if cli.sync != nil {
		cli.sync.Close()
		cli.sync = nil
	}
}

func (cli *CLI) run(scanner *bufio.Scanner) {
	cli.printf("\n%s╔══════════════════════════════════════╗%s\n", colorCyan, colorReset)
	cli.printf("%s║         DraftDesk document CLI       ║%s\n", colorCyan, colorReset)
	cli.printf("%s╚══════════════════════════════════════╝%s\n", colorCyan, colorReset)
	cli.printf("%sBackend: %s | Type 'help' for commands%s\n\n", colorBlue, cli.cfg.APIBaseURL, colorReset)

	if err := cli.start(); err == nil {
		cli.cmdTree(nil)
	}

	for {
		cli.printf("\n%sdraftdesk>%s ", colorCyan, colorReset)
		if !scanner.Scan() {
			cli.printf("\n")
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "quit" || line == "exit" {
			cli.logger.Info("CLI exiting")
			cli.printf("%s✓ Goodbye!%s\n", colorGreen, colorReset)
			return
		}
		cli.exec(line)

		if cli.ctx.Err() != nil {
			return
		}
		cli.settle()
	}
}

// settle rebuilds the services for the fallback identity when the last
// command lost the session.
func (cli *CLI) settle() {
	if cli.purged.Swap(false) {
		cli.printf("%s⚠ Session rejected by the backend. Log in again with 'login <id-token>'.%s\n", colorYellow, colorReset)
		_ = cli.start()
	}
}

// exec runs one command line and reports whether it succeeded.
func (cli *CLI) exec(line string) bool {
	args, err := splitArgs(line)
	if err != nil {
		cli.printf("%s⚠ %v%s\n", colorYellow, err, colorReset)
		return false
	}
	if len(args) == 0 {
		return true
	}

	name, rest := strings.ToLower(args[0]), args[1:]
	cli.logger.Debug("command", "name", name, "args", len(rest))

	switch name {
	case "help", "?":
		cli.cmdHelp()
		return true
	case "tree", "folders", "ls":
		return cli.cmdTree(rest)
	case "refresh":
		return cli.cmdRefresh()
	case "expand", "open":
		return cli.cmdExpand(rest)
	case "collapse", "close":
		return cli.cmdCollapse(rest)
	case "toggle":
		return cli.cmdToggle(rest)
	case "upload":
		return cli.cmdUpload(rest)
	case "delete", "rm":
		return cli.cmdDelete(rest)
	case "status", "reconcile":
		return cli.cmdReconcile()
	case "pending":
		return cli.cmdPending()
	case "wait":
		return cli.cmdWait()
	case "watch":
		return cli.cmdWatch(rest)
	case "use":
		return cli.cmdUse(rest)
	case "ask":
		return cli.cmdAsk(rest)
	case "login":
		return cli.cmdLogin(rest)
	case "logout":
		return cli.cmdLogout()
	case "whoami":
		return cli.cmdWhoami()
	case "ping":
		return cli.cmdPing()
	default:
		cli.printf("%s⚠ Unknown command %q. Type 'help'.%s\n", colorYellow, name, colorReset)
		return false
	}
}

func (cli *CLI) cmdHelp() {
	cli.printf(`%sCommands%s
  tree                      show folders and loaded documents
  refresh                   reload the folder list
  expand|collapse|toggle F  open or close folder F (name or ID)
  upload PATH [F]           upload a PDF/DOC/DOCX (default folder: %s)
  delete DOC                delete a document by ID
  status                    check processing documents now
  pending                   list documents still being indexed
  wait                      block until indexing has finished
  watch [on|off]            print synchronizer events as they happen
  use F|all                 choose the folder questions are asked over
  ask QUESTION              generate a draft from indexed documents
  login ID_TOKEN            sign in with a Google ID token
  logout | whoami | ping
  quit
`, colorCyan, colorReset, cli.cfg.IntakeFolderName)
}

func (cli *CLI) cmdTree(_ []string) bool {
	var b strings.Builder
	renderTree(&b, cli.sync.Folders(), cli.sync.IsExpanded)
	cli.printf("%s", b.String())
	if n := len(cli.sync.Pending()); n > 0 {
		cli.printf("%s⏳ %d document(s) processing%s\n", colorBlue, n, colorReset)
	}
	return true
}

func (cli *CLI) cmdRefresh() bool {
	if err := cli.sync.Refresh(cli.ctx); err != nil {
		cli.printErr("Failed to refresh", err)
		return false
	}
	return cli.cmdTree(nil)
}

func (cli *CLI) cmdExpand(args []string) bool {
	folder, ok := cli.folderArg(args)
	if !ok {
		return false
	}
	if err := cli.sync.Expand(cli.ctx, folder.ID); err != nil {
		cli.printErr("Failed to open folder", err)
		return false
	}
	return cli.cmdTree(nil)
}

func (cli *CLI) cmdCollapse(args []string) bool {
	folder, ok := cli.folderArg(args)
	if !ok {
		return false
	}
	cli.sync.Collapse(folder.ID)
	return cli.cmdTree(nil)
}

func (cli *CLI) cmdToggle(args []string) bool {
	folder, ok := cli.folderArg(args)
	if !ok {
		return false
	}
	if _, err := cli.sync.Toggle(cli.ctx, folder.ID); err != nil {
		cli.printErr("Failed to toggle folder", err)
		return false
	}
	return cli.cmdTree(nil)
}

func (cli *CLI) cmdUpload(args []string) bool {
	if len(args) < 1 {
		cli.printf("%s⚠ usage: upload PATH [FOLDER]%s\n", colorYellow, colorReset)
		return false
	}

	var target *string
	if len(args) > 1 {
		folder, ok := cli.folderArg(args[1:])
		if !ok {
			return false
		}
		target = &folder.ID
	}

	content, err := os.ReadFile(args[0])
	if err != nil {
		cli.printf("%s❌ Cannot read %s: %v%s\n", colorRed, args[0], err, colorReset)
		return false
	}
	file := &models.UploadFile{
		Name:        filepath.Base(args[0]),
		ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(args[0]))),
		Content:     content,
	}

	cli.printf("%s⏳ Uploading %s (%d bytes)...%s\n", colorBlue, file.Name, file.Size(), colorReset)
	result, err := cli.sync.Upload(cli.ctx, file, target)
	if err != nil {
		cli.printErr("Upload failed", err)
		return false
	}

	cli.printf("%s✓ Uploaded %s as %s%s\n", colorGreen, result.FileName, result.DocumentID, colorReset)
	if docsystem.IsIndexable(file) {
		if pages, err := docsystem.PageCount(file); err == nil {
			cli.printf("%s  %d page(s) queued for indexing%s\n", colorGray, pages, colorReset)
		}
	}
	return cli.cmdTree(nil)
}

func (cli *CLI) cmdDelete(args []string) bool {
	if len(args) != 1 {
		cli.printf("%s⚠ usage: delete DOCUMENT_ID%s\n", colorYellow, colorReset)
		return false
	}
	if err := cli.sync.Delete(cli.ctx, args[0], ""); err != nil {
		cli.printErr("Delete failed", err)
		return false
	}
	cli.printf("%s✓ Deleted %s%s\n", colorGreen, args[0], colorReset)
	return cli.cmdTree(nil)
}

func (cli *CLI) cmdReconcile() bool {
	report, err := cli.sync.ReconcileNow(cli.ctx)
	if report != nil {
		cli.printf("Checked %d, finished %d, failed checks %d\n",
			report.Checked, len(report.Terminal), len(report.Failed))
		for id, st := range report.Terminal {
			cli.printf("  %s → %s\n", id, colorStatus(st))
		}
	}
	if err != nil {
		cli.printErr("Some status checks failed", err)
		return false
	}
	return true
}

func (cli *CLI) cmdPending() bool {
	pending := cli.sync.Pending()
	if len(pending) == 0 {
		cli.printf("%s✓ Nothing is processing%s\n", colorGreen, colorReset)
		return true
	}
	for _, p := range pending {
		cli.printf("  %s (folder %s)\n", p.DocumentID, p.FolderID)
	}
	return true
}

func (cli *CLI) cmdWait() bool {
	if !cli.sync.Polling() {
		cli.printf("%s✓ Nothing is processing%s\n", colorGreen, colorReset)
		return true
	}

	prev := cli.watch.Swap(true)
	defer cli.watch.Store(prev)

	cli.printf("%s⏳ Waiting for indexing to finish (Ctrl+C to stop)...%s\n", colorBlue, colorReset)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for cli.sync.Polling() {
		select {
		case <-cli.ctx.Done():
			return false
		case <-ticker.C:
		}
	}
	cli.printf("%s✓ All documents finished processing%s\n", colorGreen, colorReset)
	return true
}

func (cli *CLI) cmdWatch(args []string) bool {
	on := !cli.watch.Load()
	if len(args) > 0 {
		on = args[0] == "on"
	}
	cli.watch.Store(on)
	cli.printf("Event output %s\n", map[bool]string{true: "on", false: "off"}[on])
	return true
}

func (cli *CLI) cmdUse(args []string) bool {
	if len(args) == 1 && strings.EqualFold(args[0], "all") {
		cli.scope = nil
		cli.printf("Questions now search all folders\n")
		return true
	}
	folder, ok := cli.folderArg(args)
	if !ok {
		return false
	}
	cli.scope = &folder.ID
	cli.printf("Questions now search %s\n", folder.Name)
	return true
}

func (cli *CLI) cmdAsk(args []string) bool {
	question := strings.Join(args, " ")
	cli.printf("%s⏳ Generating draft...%s\n", colorBlue, colorReset)

	result, err := cli.drafts.Ask(cli.ctx, question, cli.scope)
	if err != nil {
		var empty *domain.EmptyResultError
		var notFound *domain.NotFoundError
		switch {
		case errors.As(err, &empty) && empty.Reason == domain.ReasonNoEvidence:
			cli.printf("%s⚠ No relevant passages were found. Try rephrasing or another folder.%s\n", colorYellow, colorReset)
		case errors.As(err, &empty):
			cli.printf("%s⚠ Passages were found but no draft was produced.%s\n", colorYellow, colorReset)
		case errors.As(err, &notFound) && notFound.Reason == domain.ReasonNotIndexed:
			cli.printf("%s⚠ No indexed documents yet. Upload a PDF and wait for it to finish.%s\n", colorYellow, colorReset)
		default:
			cli.printErr("Query failed", err)
		}
		return false
	}

	var b strings.Builder
	renderDraft(&b, result)
	cli.printf("%s", b.String())
	return true
}

func (cli *CLI) cmdLogin(args []string) bool {
	if len(args) != 1 {
		cli.printf("%s⚠ usage: login GOOGLE_ID_TOKEN%s\n", colorYellow, colorReset)
		return false
	}
	session, err := cli.sessions.Login(cli.ctx, cli.client, args[0])
	if err != nil {
		cli.printErr("Login failed", err)
		return false
	}
	cli.printf("%s✓ Logged in as %s%s\n", colorGreen, session.User.Email, colorReset)
	return cli.start() == nil
}

func (cli *CLI) cmdLogout() bool {
	if err := cli.sessions.Logout(); err != nil {
		cli.printErr("Logout failed", err)
		return false
	}
	cli.printf("%s✓ Logged out%s\n", colorGreen, colorReset)
	return cli.start() == nil
}

func (cli *CLI) cmdWhoami() bool {
	session, err := cli.sessions.Current()
	if err != nil {
		cli.printErr("Cannot read session", err)
		return false
	}
	if session == nil {
		cli.printf("Not logged in; using user %s\n", cli.userID)
		return true
	}

	user, err := cli.client.CurrentUser(cli.ctx)
	if err != nil {
		cli.printErr("Backend did not accept the session", err)
		return false
	}
	cli.printf("%s (%s)\n", user.Email, user.ID)
	if session.ExpiresAt != nil {
		cli.printf("%s  session expires %s%s\n", colorGray, session.ExpiresAt.Local().Format(time.DateTime), colorReset)
	}
	return true
}

func (cli *CLI) cmdPing() bool {
	start := time.Now()
	if err := cli.client.Ping(cli.ctx); err != nil {
		cli.printErr("Backend unreachable", err)
		return false
	}
	cli.printf("%s✓ pong (%s)%s\n", colorGreen, time.Since(start).Round(time.Millisecond), colorReset)
	return true
}

// folderArg resolves a folder by ID or exact name from the current snapshot.
func (cli *CLI) folderArg(args []string) (models.Folder, bool) {
	if len(args) == 0 {
		cli.printf("%s⚠ A folder name or ID is required%s\n", colorYellow, colorReset)
		return models.Folder{}, false
	}
	want := strings.Join(args, " ")
	if f, ok := findFolder(cli.sync.Folders(), want); ok {
		return f, true
	}
	cli.printf("%s⚠ No folder named %q%s\n", colorYellow, want, colorReset)
	return models.Folder{}, false
}

func (cli *CLI) onEvent(ev docsystem.Event) {
	cli.logger.Debug("synchronizer event",
		"type", ev.Type,
		"folder_id", ev.FolderID,
		"document_id", ev.DocumentID,
	)
	if !cli.watch.Load() {
		return
	}
	if line := describeEvent(ev); line != "" {
		cli.printf("%s· %s%s\n", colorGray, line, colorReset)
	}
}

func (cli *CLI) printErr(action string, err error) {
	cli.logger.Warn(strings.ToLower(action), "error", err)
	cli.printf("%s❌ %s: %s%s\n", colorRed, action, domain.DisplayMessage(err, genericFailureMessage), colorReset)
	if auth.IsAuthError(err) {
		cli.printf("%s  Run 'login <id-token>' to sign in again.%s\n", colorYellow, colorReset)
	}
}

func (cli *CLI) printf(format string, a ...any) {
	cli.outMu.Lock()
	defer cli.outMu.Unlock()
	fmt.Fprintf(cli.out, format, a...)
}
