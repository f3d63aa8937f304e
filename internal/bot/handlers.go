package bot

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/isotoolkit/keeper/internal/access"
	"github.com/isotoolkit/keeper/internal/chat"
	"github.com/isotoolkit/keeper/internal/domain"
	"github.com/isotoolkit/keeper/internal/folders"
	"github.com/isotoolkit/keeper/internal/relay"
)

const listDisplayCap = 10

func (b *Bot) handleStart(ctx context.Context, m *chat.Message, _ string) {
	b.reply(ctx, m, helpText)
}

func (b *Bot) handleCheck(ctx context.Context, m *chat.Message, _ string) {
	msgID := b.reply(ctx, m, "🔍 Checking site status...")

	res := b.d.Pinger.Ping(ctx, b.d.TargetURL, b.d.PingTimeout)
	b.d.Counter.Record(res.OK)

	stamp := time.Now().Format("15:04:05")
	if res.OK {
		b.edit(ctx, m.ChatID, msgID, fmt.Sprintf(
			"✅ Site is online!\nStatus code: %d\n🕐 Checked at %s", res.HTTPStatus, stamp))
		return
	}
	b.edit(ctx, m.ChatID, msgID, fmt.Sprintf(
		"❌ Site appears to be down\nReason: %s\n🕐 Checked at %s", res.Message, stamp))
}

func (b *Bot) handleWake(ctx context.Context, m *chat.Message, _ string) {
	msgID := b.reply(ctx, m, "⏰ Waking up the server, this can take a minute...")

	res := b.d.Pinger.Wake(ctx, b.d.TargetURL, b.d.PingTimeout, b.d.WakeRetryDelay)
	b.d.Counter.Record(res.OK)

	if res.OK {
		b.edit(ctx, m.ChatID, msgID, fmt.Sprintf(
			"✅ Server is awake!\nStatus code: %d", res.HTTPStatus))
		return
	}
	b.edit(ctx, m.ChatID, msgID, fmt.Sprintf(
		"❌ Could not wake the server\nReason: %s", res.Message))
}

func (b *Bot) handleStats(ctx context.Context, m *chat.Message, _ string) {
	snap := b.d.Counter.Snapshot()
	b.reply(ctx, m, fmt.Sprintf(
		"📊 Ping statistics\n\nTotal pings: %d\n✅ Successful: %d\n❌ Failed: %d\nSuccess rate: %.1f%%",
		snap.Total, snap.Success, snap.Failed, snap.SuccessRate()))
}

func (b *Bot) handleUpload(ctx context.Context, m *chat.Message, _ string) {
	if m.ReplyTo == nil {
		b.reply(ctx, m, "📎 Reply to a file with /upload to relay it.")
		return
	}
	doc := m.ReplyTo.Document
	if doc == nil {
		b.reply(ctx, m, "❌ The replied message has no file attached.")
		return
	}

	name := doc.FileName
	if name == "" {
		name = "unknown.iso"
	}

	msgID := b.reply(ctx, m, fmt.Sprintf("📦 Processing %s...", name))

	res, err := b.d.Relay.Relay(ctx, relay.Source{
		Open: func(ctx context.Context) (io.ReadCloser, error) {
			return b.d.Chat.OpenFile(ctx, doc.FileID)
		},
		Filename:     name,
		Size:         doc.FileSize,
		AttachmentID: doc.FileID,
	})
	if err != nil {
		b.edit(ctx, m.ChatID, msgID, "❌ Upload failed:\n"+err.Error())
		return
	}

	folderLabel := b.d.Folders.RecordUpload(ctx, m.From.ID)

	b.edit(ctx, m.ChatID, msgID, "🔍 Matching with catalog...")
	match := b.d.Catalog.AutoMatch(ctx, name, resultSize(res, doc.FileSize),
		res.Destination, res.FileID, res.DownloadURL)

	b.edit(ctx, m.ChatID, msgID,
		uploadReport(name, resultSize(res, doc.FileSize), res, match, folderLabel, 0))
}

func (b *Bot) handleFetch(ctx context.Context, m *chat.Message, args string) {
	if args == "" {
		b.reply(ctx, m, "📥 Usage: /fetch <url>")
		return
	}
	rawURL := strings.Fields(args)[0]
	if !relay.IsSupportedURL(rawURL) {
		b.reply(ctx, m, "❌ Invalid URL. Must start with http:// or https://")
		return
	}

	msgID := b.reply(ctx, m, "📥 Initializing fetch...")

	if !b.d.Relay.HostConfigured() {
		b.edit(ctx, m.ChatID, msgID, "❌ "+relay.ErrNoCredential.Error())
		return
	}

	b.edit(ctx, m.ChatID, msgID, "📡 Checking file info...")
	remote, err := b.d.Fetcher.Probe(ctx, rawURL)
	if err != nil {
		b.edit(ctx, m.ChatID, msgID, "❌ Fetch failed:\n"+err.Error())
		return
	}

	sizeNote := "unknown size"
	if remote.Size > 0 {
		sizeNote = domain.FormatSize(remote.Size)
	}
	b.edit(ctx, m.ChatID, msgID, fmt.Sprintf("⬇️ Downloading %s (%s)...", remote.Name, sizeNote))

	start := time.Now()
	scratch, err := b.d.Fetcher.Download(ctx, rawURL)
	if err != nil {
		b.edit(ctx, m.ChatID, msgID, "❌ Download failed:\n"+err.Error())
		return
	}
	defer scratch.Remove()

	b.edit(ctx, m.ChatID, msgID, "☁️ Uploading to file host...")
	res, err := b.d.Relay.Relay(ctx, relay.Source{
		Open: func(context.Context) (io.ReadCloser, error) {
			return scratch.Open()
		},
		Filename: remote.Name,
		Size:     scratch.Size,
	})
	if err != nil {
		b.edit(ctx, m.ChatID, msgID, "❌ Upload failed:\n"+err.Error())
		return
	}
	elapsed := time.Since(start)

	folderLabel := b.d.Folders.RecordUpload(ctx, m.From.ID)

	b.edit(ctx, m.ChatID, msgID, "🔍 Matching with catalog...")
	match := b.d.Catalog.AutoMatch(ctx, remote.Name, resultSize(res, scratch.Size),
		res.Destination, res.FileID, res.DownloadURL)

	b.edit(ctx, m.ChatID, msgID,
		uploadReport(remote.Name, resultSize(res, scratch.Size), res, match, folderLabel, elapsed))
}

func (b *Bot) handleInfo(ctx context.Context, m *chat.Message, _ string) {
	if m.ReplyTo == nil || m.ReplyTo.Document == nil {
		b.reply(ctx, m, "📎 Reply to a file with /info to inspect it.")
		return
	}
	doc := m.ReplyTo.Document

	name := doc.FileName
	if name == "" {
		name = "unknown"
	}
	mimeType := doc.MIMEType
	if mimeType == "" {
		mimeType = "unknown"
	}

	b.reply(ctx, m, fmt.Sprintf(
		"📄 File info\n\nName: %s\nSize: %s\nType: %s\nFile ID: %s",
		name, domain.FormatSize(doc.FileSize), mimeType, truncateID(doc.FileID)))
}

func (b *Bot) handleList(ctx context.Context, m *chat.Message, _ string) {
	items, err := b.d.Catalog.ListHosted(ctx)
	if err != nil {
		b.reply(ctx, m, "❌ Could not list hosted files:\n"+err.Error())
		return
	}
	if len(items) == 0 {
		b.reply(ctx, m, "📂 No hosted files yet.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📂 Hosted files (%d)\n", len(items))
	shown := items
	if len(shown) > listDisplayCap {
		shown = shown[:listDisplayCap]
	}
	for _, it := range shown {
		fmt.Fprintf(&sb, "\n• %s — %s [%s]",
			it.Name, domain.FormatSize(it.FileSize), strings.ToUpper(it.Platform))
	}
	if extra := len(items) - len(shown); extra > 0 {
		fmt.Fprintf(&sb, "\n\n... and %d more", extra)
	}
	b.reply(ctx, m, sb.String())
}

func (b *Bot) handleAllow(ctx context.Context, m *chat.Message, args string) {
	target, ok := parseUserID(args)
	if !ok {
		b.reply(ctx, m, "❌ Invalid user ID. Must be a number.")
		return
	}

	switch err := b.d.Gate.Allow(ctx, m.From.ID, target); err {
	case nil:
		b.reply(ctx, m, fmt.Sprintf(
			"✅ User %d granted access.\nAuthorized users: %d", target, b.d.Gate.Count()+1))
	case access.ErrAlreadyAllowed:
		b.reply(ctx, m, fmt.Sprintf("ℹ️ User %d is already authorized.", target))
	default:
		b.reply(ctx, m, "❌ "+err.Error())
	}
}

func (b *Bot) handleDeny(ctx context.Context, m *chat.Message, args string) {
	target, ok := parseUserID(args)
	if !ok {
		b.reply(ctx, m, "❌ Invalid user ID. Must be a number.")
		return
	}

	switch err := b.d.Gate.Deny(ctx, m.From.ID, target); err {
	case nil:
		b.reply(ctx, m, fmt.Sprintf("✅ User %d access revoked.", target))
	case access.ErrOwnerImmutable:
		b.reply(ctx, m, "❌ Cannot revoke the owner's access.")
	case access.ErrNotAllowed:
		b.reply(ctx, m, fmt.Sprintf("ℹ️ User %d is not in the allowed list.", target))
	default:
		b.reply(ctx, m, "❌ "+err.Error())
	}
}

func (b *Bot) handleUsers(ctx context.Context, m *chat.Message, _ string) {
	ids := b.d.Gate.Operators()

	var sb strings.Builder
	fmt.Fprintf(&sb, "👥 Authorized users (%d)\n\n• %d (owner)", len(ids)+1, b.d.Gate.Owner())
	for _, id := range ids {
		fmt.Fprintf(&sb, "\n• %d", id)
	}
	b.reply(ctx, m, sb.String())
}

func (b *Bot) handleFolderCreate(ctx context.Context, m *chat.Message, args string) {
	name := strings.TrimSpace(args)
	if name == "" {
		b.reply(ctx, m, "📁 Usage: /folder_create <name>")
		return
	}

	switch _, err := b.d.Folders.Create(ctx, m.From.ID, name); err {
	case nil:
		b.reply(ctx, m, fmt.Sprintf(
			"📁 Folder %q created and set as current.\nNew uploads will be tagged with it.", name))
	case folders.ErrExists:
		b.reply(ctx, m, fmt.Sprintf("ℹ️ Folder %q already exists.", name))
	default:
		b.reply(ctx, m, "❌ "+err.Error())
	}
}

func (b *Bot) handleFolderList(ctx context.Context, m *chat.Message, _ string) {
	list := b.d.Folders.List(m.From.ID)
	if len(list) == 0 {
		b.reply(ctx, m, "📁 No folders yet. Create one with /folder_create <name>")
		return
	}

	current := b.d.Folders.Current(m.From.ID)
	var sb strings.Builder
	sb.WriteString("📁 Your folders\n")
	for _, f := range list {
		marker := ""
		if current != nil && f.Name == current.Name {
			marker = " ← current"
		}
		fmt.Fprintf(&sb, "\n• %s (%d files)%s", f.Name, f.FileCount, marker)
	}
	b.reply(ctx, m, sb.String())
}

func (b *Bot) handleFolderSet(ctx context.Context, m *chat.Message, args string) {
	name := strings.TrimSpace(args)
	if name == "" {
		b.reply(ctx, m, "📁 Usage: /folder_set <name>")
		return
	}

	switch err := b.d.Folders.SetCurrent(ctx, m.From.ID, name); err {
	case nil:
		b.reply(ctx, m, fmt.Sprintf("📁 Current folder is now %q.", name))
	case folders.ErrNotFound:
		b.reply(ctx, m, fmt.Sprintf("❌ Folder %q not found.", name))
	default:
		b.reply(ctx, m, "❌ "+err.Error())
	}
}

// uploadReport renders the final status message shared by /upload and
// /fetch. elapsed is zero for attachment relays, where no transfer
// happened on our side.
func uploadReport(name string, size int64, res *domain.UploadResult, match *domain.MatchResult, folderLabel string, elapsed time.Duration) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ Upload complete!\n\n📄 %s\n💾 %s\n🌐 %s",
		name, domain.FormatSize(size), res.Destination.Label())

	if folderLabel != "" {
		fmt.Fprintf(&sb, "\n📂 Folder: %s", folderLabel)
	}
	if elapsed > 0 {
		fmt.Fprintf(&sb, "\n⏱ %s (%s/s)",
			elapsed.Round(time.Second), domain.FormatSize(bytesPerSecond(size, elapsed)))
	}

	fmt.Fprintf(&sb, "\n\n🔗 %s", res.DownloadURL)
	if res.ViewURL != "" {
		fmt.Fprintf(&sb, "\n👁 %s", res.ViewURL)
	}

	if match.Matched {
		fmt.Fprintf(&sb, "\n\n🎯 Matched catalog item %s", match.CatalogID)
		if match.Info != nil {
			fmt.Fprintf(&sb, ": %s %s (%s)",
				match.Info.Name, match.Info.Version, match.Info.Architecture)
		}
	} else {
		sb.WriteString("\n\nℹ️ No catalog match.")
	}

	return sb.String()
}

func bytesPerSecond(size int64, elapsed time.Duration) int64 {
	secs := elapsed.Seconds()
	if secs <= 0 {
		return size
	}
	return int64(float64(size) / secs)
}

func resultSize(res *domain.UploadResult, fallback int64) int64 {
	if res.Size > 0 {
		return res.Size
	}
	return fallback
}

func parseUserID(args string) (int64, bool) {
	fields := strings.Fields(args)
	if len(fields) != 1 {
		return 0, false
	}
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// truncateID keeps ids readable in chat; platform file ids run long.
func truncateID(id string) string {
	if len(id) <= 30 {
		return id
	}
	return id[:30] + "..."
}

const helpText = `🤖 ISO keeper

Site:
/check - check if the site is online
/wake - wake the server up
/stats - ping statistics

Files:
/upload - reply to a file to relay it
/fetch <url> - download a file from a URL and relay it
/info - reply to a file to inspect it
/list - list hosted files

Folders:
/folder_create <name> - create a folder label
/folder_list - list your folders
/folder_set <name> - switch the current folder

Owner:
/allow <id> - grant a user access
/deny <id> - revoke a user's access
/users - list authorized users`
