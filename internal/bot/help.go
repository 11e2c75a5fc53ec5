package bot

import (
	"fmt"
	"strings"
)

// Help returns the help text for a topic, or the overview for an empty or
// unknown topic.
func (p *Plugin) Help(topic string) string {
	switch strings.TrimSpace(topic) {
	case "show":
		return "zg show <ID> - show information of the item specified by ID"
	case "create":
		return "zg create <URL> [<TAG1, TAG2, ...>] - submit link with tags (optional) | " +
			"URL pointing to image/audio/video, direct links to jpg/gif/png files, or a supported media site"
	case "update":
		return "zg update <ID> [<TAG1, TAG2, ...>] - update item specified by ID with comma separated tag list | " +
			"-TAG will remove TAG from item"
	case "delete":
		return "zg delete <ID> - delete an item specified by ID | non-admins can only delete their own items"
	case "upvote":
		return "zg upvote [remove] <ID> - upvote an item specified by ID or undo a previous upvote | " +
			"if you are authenticated and enabled the shortupvote option, you can use +1 in any channel message " +
			"to upvote the last submitted item in that channel"
	case "auth":
		return fmt.Sprintf("zg auth <EMAIL> <API SECRET> - authenticate yourself or update your email/key | "+
			"you find your API SECRET here: %sapi_secret", ensureTrailingSlash(p.cfg.BaseURL))
	case "enable":
		return "zg enable <OPTION> - enables a boolean OPTION | for a list of options and their values use the zg command"
	case "disable":
		return "zg disable <OPTION> - disables a boolean OPTION | for a list of options and their values use the zg command"
	case "alt":
		return "zg alt <NICK> - adds or removes an alternative NICK"
	case "test":
		return fmt.Sprintf("zg test - check authentication against %s and show nickserv status", p.host())
	case "errors":
		return "zg errors [<CHANNEL>] - show the last submission errors of a channel"
	case "shortcuts":
		return "^[<ID/OFFSET>] [<TAG1, TAG2, ...>] - used in channels the bot listens in, to show or update an item " +
			"specified by ID or OFFSET (by default the last item submitted in that room) | " +
			"you need to have the shortcuts option enabled"
	default:
		return fmt.Sprintf("%s | media links in %s are published | messages starting with # are ignored | "+
			"end message with '# tag1, tag2' to submit with tags | usage: zg [<command>] | "+
			"commands: (none) user options/help; show; create; update; delete; upvote; errors; "+
			"auth reg/login; enable option; disable option; alt set alternative nicks; test show auth status",
			p.host(), strings.Join(p.cfg.Listen, ","))
	}
}
