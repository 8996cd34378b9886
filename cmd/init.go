package cmd

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/wentf9/nij/cmd/utils"
	"github.com/wentf9/nij/pkg/location"
	"github.com/wentf9/nij/pkg/nodeinfo"
	"github.com/wentf9/nij/pkg/probe"
	"github.com/wentf9/nij/pkg/prompt"
	"github.com/wentf9/nij/pkg/session"
	"github.com/wentf9/nij/pkg/validator"
)

type InitOptions struct {
	*GlobalOptions
	Name string
	Now  func() time.Time
	// findDefaultPath 在测试中会被替换
	findDefaultPath func() string
}

func NewCmdInit(g *GlobalOptions) *cobra.Command {
	o := &InitOptions{GlobalOptions: g, Now: time.Now, findDefaultPath: utils.FindNodeInfoFile}
	return &cobra.Command{
		Use:   "init [<name>]",
		Short: "交互式创建或更新本节点的 node info",
		Long: `交互式创建或更新 node info。
依次询问远程名称和文件位置, 文件不存在时从本机探测默认值
(主机名、git 邮箱、gpg 密钥、tun0 上的 cjdns 地址), 然后逐项确认每个字段。`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				o.Name = args[0]
			}
			return o.Run(cmd)
		},
	}
}

func (o *InitOptions) Run(cmd *cobra.Command) error {
	env, err := o.Env()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	p := prompt.New(cmd.InOrStdin(), out)
	ctx := cmd.Context()

	name := o.Name
	if name == "" {
		if name, err = p.Ask(ctx, "Node name (for nij use)", "local"); err != nil {
			return err
		}
	}
	oldPath, ok := env.Registry.Path(name)
	if !ok {
		oldPath = o.findDefaultPath()
	}
	path, err := p.Ask(ctx, "Path to nodeinfo.json", oldPath)
	if err != nil {
		return err
	}
	loc, err := location.Parse(path)
	if err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("无效的位置: %w", err)}
	}
	changed, err := env.Registry.Upsert(name, loc)
	if err != nil {
		return err
	}
	if changed {
		if err := env.SaveRegistry(); err != nil {
			return err
		}
	}

	doc, err := session.FetchDocument(ctx, env.Transport, loc)
	if err != nil {
		return err
	}
	if doc == nil {
		doc = probe.New(env.Exec).Probe(ctx).Document()
	}
	if err := promptFields(ctx, p, out, doc); err != nil {
		return err
	}
	if err := doc.Touch(o.Now()); err != nil {
		return err
	}

	fmt.Fprintf(out, "About to write to %s:\n", loc)
	out.Write(doc.Pretty())
	ok, err = p.YesNo(ctx, "Is this ok?", true)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(out, "Cancelling")
		return nil
	}
	return env.Transport.Write(ctx, loc, doc.Pretty())
}

type field struct {
	path, label string
	numeric     bool
}

// promptFields 逐项询问字段, 当前值作为默认值; 没有当前值时空回答删除该字段
func promptFields(ctx context.Context, p *prompt.Prompter, out io.Writer, doc *nodeinfo.Document) error {
	pgp := "pgp"
	if doc.Has("contact.pgp") {
		pgp = "contact.pgp"
	}
	fields := []field{
		{path: "hostname", label: "Hostname"},
		{path: "ip", label: "cjdns IP"},
		{path: "key", label: "cjdns public key"},
		{path: "contact.name", label: "Contact name"},
		{path: "contact.email", label: "Contact email"},
		{path: "contact.irc", label: "IRC"},
		{path: "contact.xmpp", label: "XMPP"},
		{path: "contact.bitmessage", label: "Bitmessage"},
		{path: pgp + ".fingerprint", label: "PGP key fingerprint"},
		{path: pgp + ".keyserver", label: "PGP keyserver"},
		{path: "location.longitude", label: "Longitude", numeric: true},
		{path: "location.latitude", label: "Latitude", numeric: true},
		{path: "location.altitude", label: "Altitude (m)", numeric: true},
		{path: "location.continent", label: "Continent"},
		{path: "location.region", label: "Region"},
		{path: "location.municipality", label: "Municipality"},
		{path: "location.uri", label: "Meshlocal uri"},
	}
	for _, f := range fields {
		if f.path == "location.continent" {
			fmt.Fprintf(out, "Valid continent codes include %s\n", strings.Join(validator.ValidContinents, ","))
		}
		current := doc.Get(f.path)
		def := ""
		if current.Exists() && current.Type != gjson.Null {
			def = current.String()
		}
		answer, err := p.Ask(ctx, f.label, def)
		if err != nil {
			return err
		}
		if answer == "" {
			if err := doc.Delete(f.path); err != nil {
				return err
			}
			continue
		}
		var value any = answer
		if f.numeric {
			if n, err := strconv.ParseFloat(answer, 64); err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) {
				value = n
			}
		}
		if err := doc.Set(f.path, value); err != nil {
			return err
		}
	}
	return nil
}
