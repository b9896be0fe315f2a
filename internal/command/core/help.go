package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"djtoad/internal/command"
	"djtoad/internal/middleware"
	"djtoad/internal/version"
	"djtoad/pkg/cmd"

	"github.com/bwmarrin/discordgo"
)

const embedColor = 0x57F287

type HelpCommand struct {
	// Registry defaults to cmd.DefaultRegistry.
	Registry *cmd.Registry
}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "List the available commands" }
func (c *HelpCommand) Category() string    { return "🕯️ Information" }
func (c *HelpCommand) Usage() string       { return "help" }
func (c *HelpCommand) Aliases() []string   { return []string{"commands"} }

func (c *HelpCommand) Run(_ context.Context, mc *command.MessageContext, _ *cmd.Invocation) error {
	reg := c.Registry
	if reg == nil {
		reg = cmd.DefaultRegistry
	}
	return mc.ReplyEmbed(buildHelpEmbed(reg, mc.Prefix))
}

func buildHelpEmbed(reg *cmd.Registry, prefix string) *discordgo.MessageEmbed {
	byCategory := map[string][]string{}
	for _, c := range reg.GetAll() {
		category, usage := "Other", c.Name()
		if meta, ok := cmd.Root(c).(command.DiscordMeta); ok {
			category, usage = meta.Category(), meta.Usage()
		}
		line := fmt.Sprintf("`%s%s` %s", prefix, usage, c.Description())
		byCategory[category] = append(byCategory[category], line)
	}

	categories := make([]string, 0, len(byCategory))
	for name := range byCategory {
		categories = append(categories, name)
	}
	sort.Strings(categories)

	embed := &discordgo.MessageEmbed{
		Title:       version.AppName + " commands",
		Description: version.AppDescription + ". Croak!",
		Color:       embedColor,
		Footer:      &discordgo.MessageEmbedFooter{Text: "v" + version.AppVersion},
	}
	for _, name := range categories {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  name,
			Value: strings.Join(byCategory[name], "\n"),
		})
	}
	return embed
}

func init() {
	command.RegisterCommand(
		&HelpCommand{},
		middleware.WithCommandLogger(),
	)
}
