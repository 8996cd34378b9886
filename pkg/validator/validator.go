// Package validator 检查 node info 文档并输出警告
//
// 警告不会阻止保存,只有 check 命令会因为警告返回非零退出码。
package validator

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/wentf9/nij/pkg/nodeinfo"
)

// Rule 检查文档的某一方面,通过 warn 报告警告
type Rule func(doc *nodeinfo.Document, warn func(msg string))

// Validator 按顺序执行规则
type Validator struct {
	Rules []Rule
}

// ValidContinents 是 location.continent 允许的大洲代码
var ValidContinents = []string{"AS", "SA", "NA", "AF", "EU", "AN", "OC"}

var (
	keyPattern = regexp.MustCompile(`^[0-9a-z]{52}\.k$`)
	ipPattern  = regexp.MustCompile(`^fc[0-9a-f:]*$`)
)

// Default 返回包含全部标准规则的校验器
func Default() *Validator {
	return &Validator{Rules: []Rule{
		CheckKey,
		CheckHostname,
		CheckIP,
		CheckContact,
		CheckPGP,
		CheckLocation,
		CheckServices,
	}}
}

// Check 按规则顺序返回警告,文档为 nil 时只返回 "Info is empty"
func (v *Validator) Check(doc *nodeinfo.Document) []string {
	var warnings []string
	warn := func(msg string) { warnings = append(warnings, msg) }
	if doc == nil {
		warn("Info is empty")
		return warnings
	}
	for _, rule := range v.Rules {
		rule(doc, warn)
	}
	return warnings
}

// Check 使用默认规则校验文档
func Check(doc *nodeinfo.Document) []string {
	return Default().Check(doc)
}

func CheckKey(doc *nodeinfo.Document, warn func(string)) {
	key := doc.Get("key")
	if !nodeinfo.Truthy(key) {
		warn("Missing key")
	} else if !keyPattern.MatchString(key.String()) {
		warn("Invalid key")
	}
}

func CheckHostname(doc *nodeinfo.Document, warn func(string)) {
	if !nodeinfo.Truthy(doc.Get("hostname")) {
		warn("Missing hostname")
	}
}

func CheckIP(doc *nodeinfo.Document, warn func(string)) {
	ip := doc.Get("ip")
	if !nodeinfo.Truthy(ip) {
		warn("Missing ip")
	} else if !ipPattern.MatchString(ip.String()) {
		warn("Invalid ip")
	}
}

func CheckContact(doc *nodeinfo.Document, warn func(string)) {
	contact := doc.Contact()
	if !nodeinfo.Truthy(contact) {
		warn("Missing contact")
		return
	}
	if contact.IsObject() && !nodeinfo.Truthy(contact.Get("name")) && !nodeinfo.Truthy(contact.Get("email")) {
		warn("Missing contact name/email")
	}
}

func CheckPGP(doc *nodeinfo.Document, warn func(string)) {
	pgp := doc.PGP()
	if !nodeinfo.Truthy(pgp) {
		warn("Missing pgp")
		return
	}
	if !nodeinfo.Truthy(pgp.Get("fingerprint")) {
		warn("Missing pgp fingerprint")
	}
	if !nodeinfo.Truthy(pgp.Get("keyserver")) && !nodeinfo.Truthy(pgp.Get("full")) {
		warn("Missing pgp keyserver/url")
	}
}

func CheckLocation(doc *nodeinfo.Document, warn func(string)) {
	loc := doc.Location()
	if !nodeinfo.Truthy(loc) {
		warn("Missing location")
		return
	}
	for _, field := range []string{"longitude", "latitude", "altitude"} {
		if !nodeinfo.Truthy(loc.Get(field)) {
			warn("Missing " + field)
		}
	}

	continent := loc.Get("continent")
	if !nodeinfo.Truthy(continent) {
		warn("Missing continent")
	} else if !slices.Contains(ValidContinents, strings.ToUpper(continent.String())) {
		warn("Invalid Continent code")
	}

	if !nodeinfo.Truthy(loc.Get("region")) {
		warn("Missing region")
	}
	if !nodeinfo.Truthy(loc.Get("municipality")) {
		warn("Missing municipality")
	}
	if !nodeinfo.Truthy(loc.Get("uri")) {
		warn("Missing meshlocal uri")
	}
}

func CheckServices(doc *nodeinfo.Document, warn func(string)) {
	services := doc.Services()
	if !nodeinfo.Truthy(services) {
		return
	}
	if !services.IsArray() {
		if !services.IsObject() {
			warn("Invalid services")
		}
		return
	}
	for i, srv := range services.Array() {
		checkService(srv, i, warn)
	}
}

// checkService 中 "both uri and uris" 与 "invalid uris" 互不影响,可能同时出现
func checkService(srv gjson.Result, i int, warn func(string)) {
	if !nodeinfo.Truthy(srv.Get("name")) {
		warn(fmt.Sprintf("Service %d missing name", i))
	}
	uris := srv.Get("uris")
	if nodeinfo.Truthy(uris) {
		if nodeinfo.Truthy(srv.Get("uri")) {
			warn(fmt.Sprintf("Service %d has both uri and uris", i))
		}
		if !uris.IsArray() && !uris.IsObject() {
			warn(fmt.Sprintf("Service %d has invalid uris", i))
		}
	} else if !nodeinfo.Truthy(srv.Get("uri")) {
		warn(fmt.Sprintf("Service %d missing uri/uris", i))
	}
}
