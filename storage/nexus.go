package storage

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// HTTPClient is the client used for all nexus requests, hoisted here in case
// you'd like to substitute a different client instance
var HTTPClient = http.DefaultClient

// placeholderEntry is the file posted to materialize an empty directory on a
// nexus site, which only stores files. List filters it out.
const placeholderEntry = ".pacco"

var nexusURLRE = regexp.MustCompile(`^https?://(\w+\.)*\w+(:\d+)?(/[\w\-.]+)*/$`)

// Nexus is a Backend stored on a Nexus-style raw-hosted site repository. The
// site offers directory listings, file creation via POST and recursive
// deletion via DELETE; there is no rename and no transaction. Credentials are
// carried explicitly on each handle, never read from process-wide state.
type Nexus struct {
	base     string // always ends in "/"
	username string
	password string
}

var _ Backend = (*Nexus)(nil)

// NewNexus creates a backend for the repository directory at base, which must
// be an http(s) URL with a trailing slash
func NewNexus(base, username, password string) (*Nexus, error) {
	if !nexusURLRE.MatchString(base) {
		return nil, fmt.Errorf("invalid nexus URL %q, make sure it has a trailing slash", base)
	}
	return &Nexus{base: base, username: username, password: password}, nil
}

// do runs one request, translating transport failures and unexpected status
// codes into the connection-failure taxonomy. The response body is returned
// unread; callers own closing it.
func (n *Nexus) do(method, url string, body io.Reader, expect ...int) (*http.Response, error) {
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(n.username, n.password)

	res, err := HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %s: %w", method, url, err, ErrConnection)
	}
	for _, code := range expect {
		if res.StatusCode == code {
			return res, nil
		}
	}
	res.Body.Close()
	return nil, &ConnectionError{URL: url, Status: res.StatusCode}
}

// List fetches the directory listing page and scrapes entry names from its
// anchor tags
func (n *Nexus) List() ([]string, error) {
	res, err := n.do("GET", n.base, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	doc, err := html.Parse(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing listing for %s: %s", n.base, err)
	}

	var names []string
	seen := map[string]bool{}
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == "a" {
			name := strings.TrimSuffix(strings.TrimSpace(anchorText(node)), "/")
			if name != "" && name != ".." && !strings.EqualFold(name, "parent directory") &&
				name != placeholderEntry && !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
			return
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return names, nil
}

func anchorText(node *html.Node) string {
	var buf bytes.Buffer
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode {
			buf.WriteString(child.Data)
		}
	}
	return buf.String()
}

// MakeDir materializes an empty child directory by posting a placeholder
// file into it. The site creates directories implicitly, so presence is
// checked against the listing first; the check and the create are two
// separate requests.
func (n *Nexus) MakeDir(name string) error {
	names, err := n.List()
	if err != nil {
		return err
	}
	for _, existing := range names {
		if existing == name {
			return fmt.Errorf("%s: %w", name, ErrExists)
		}
	}
	res, err := n.do("POST", n.base+name+"/"+placeholderEntry, strings.NewReader(placeholderEntry),
		http.StatusOK, http.StatusCreated, http.StatusNoContent)
	if err != nil {
		return err
	}
	res.Body.Close()
	return nil
}

// RemoveDir recursively deletes the named child directory
func (n *Nexus) RemoveDir(name string) error {
	names, err := n.List()
	if err != nil {
		return err
	}
	found := false
	for _, existing := range names {
		if existing == name {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	res, err := n.do("DELETE", n.base+name+"/", nil, http.StatusOK, http.StatusNoContent)
	if err != nil {
		return err
	}
	res.Body.Close()
	return nil
}

// Scoped returns a handle whose base URL is this handle's URL joined with
// name
func (n *Nexus) Scoped(name string) Backend {
	return &Nexus{base: n.base + name + "/", username: n.username, password: n.password}
}

// ReplacePayload deletes any previous payload file, then posts the new one.
// The two requests are not atomic: a failure between them loses the previous
// payload without storing the new one.
func (n *Nexus) ReplacePayload(data []byte) error {
	url := n.base + PayloadEntry
	// a 404 here just means there was no previous payload
	res, err := n.do("DELETE", url, nil, http.StatusOK, http.StatusNoContent, http.StatusNotFound)
	if err != nil {
		return err
	}
	res.Body.Close()

	res, err = n.do("POST", url, bytes.NewReader(data), http.StatusOK, http.StatusCreated, http.StatusNoContent)
	if err != nil {
		return err
	}
	res.Body.Close()
	return nil
}

// FetchPayload reads the payload file back
func (n *Nexus) FetchPayload() ([]byte, error) {
	url := n.base + PayloadEntry
	res, err := n.do("GET", url, nil, http.StatusOK, http.StatusNotFound)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("no payload stored: %w", ErrNotFound)
	}
	return ioutil.ReadAll(res.Body)
}
