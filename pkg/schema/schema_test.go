package schema

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

const multiDocDeploy = `- name: First
  hosts: web1, web2
  chdir: /srv/app
  vars:
    zebra: one
    alpha: two
    middle: three
  tasks:
    - name: Check version
      command: git describe
      register: version
---
- name: Second
  hosts: db1
  tasks:
    - name: Migrate
      shell: ./migrate.sh
      when: run_migrations
      loop: [1, 2, 3]
`

func TestDecodeDeploymentsMultiDocument(t *testing.T) {
	deps, err := DecodeDeployments(strings.NewReader(multiDocDeploy))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deps) != 2 {
		t.Fatalf("len(deps) = %d, want 2 (documents flattened in order)", len(deps))
	}
	if deps[0].Name != "First" || deps[1].Name != "Second" {
		t.Errorf("deployment order = %q, %q", deps[0].Name, deps[1].Name)
	}

	hosts := deps[0].HostList()
	if len(hosts) != 2 || hosts[0] != "web1" || hosts[1] != "web2" {
		t.Errorf("HostList() = %v, want trimmed comma-split keys", hosts)
	}

	task := deps[0].Tasks[0]
	if task.Command != "git describe" || task.Register != "version" {
		t.Errorf("task = %+v, want command and register parsed", task)
	}

	loop := deps[1].Tasks[0].Loop
	if len(loop) != 3 || loop[0] != 1 {
		t.Errorf("Loop = %#v, want [1 2 3]", loop)
	}
}

// TestStringMapOrder verifies vars keep YAML document order, not sorted or
// hash order — later vars may reference earlier ones.
func TestStringMapOrder(t *testing.T) {
	deps, err := DecodeDeployments(strings.NewReader(multiDocDeploy))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var keys []string
	for p := deps[0].Vars.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	want := []string{"zebra", "alpha", "middle"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("vars order = %v, want %v", keys, want)
		}
	}
}

func TestStringMapNilSafe(t *testing.T) {
	var m *StringMap
	if m.Len() != 0 {
		t.Error("nil StringMap Len() != 0")
	}
	if m.Oldest() != nil {
		t.Error("nil StringMap Oldest() != nil")
	}
}

func TestStringMapRejectsNonMapping(t *testing.T) {
	var m StringMap
	if err := yaml.Unmarshal([]byte("- a\n- b\n"), &m); err == nil {
		t.Error("expected error decoding a sequence into StringMap")
	}
}

func TestDecodeDeploymentsUnknownField(t *testing.T) {
	doc := "- name: X\n  hosts: h\n  bogus: true\n  tasks: []\n"
	if _, err := DecodeDeployments(strings.NewReader(doc)); err == nil {
		t.Error("expected unknown-field rejection")
	}
}

func TestLoadInventoryDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "servers.yml")
	doc := `hosts:
  local:
    host: localhost
  web:
    host: web.example.com
    user: deploy
    password: secret
  db:
    host: db.example.com
    port: 2222
    user: deploy
    ssh_key_path: ~/.ssh/id_ed25519
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	inv, err := LoadInventory(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := inv.Hosts["web"].Port; got != 22 {
		t.Errorf("web port = %d, want default 22", got)
	}
	if got := inv.Hosts["db"].Port; got != 2222 {
		t.Errorf("db port = %d, want explicit 2222", got)
	}
	if !inv.Hosts["local"].IsLocal() {
		t.Error("host localhost should select the local executor")
	}
	if inv.Hosts["web"].IsLocal() {
		t.Error("remote host misclassified as local")
	}
}

func TestLoadTasksBareList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.yml")
	doc := `- name: A
  command: echo a
- name: B
  shell: echo b
  debug:
    note: "{{ item }}"
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	tasks, err := LoadTasks(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 2 || tasks[0].Name != "A" || tasks[1].Name != "B" {
		t.Fatalf("tasks = %+v, want two ordered tasks", tasks)
	}
	if msg, ok := tasks[1].Debug.Get("note"); !ok || msg != "{{ item }}" {
		t.Errorf("debug note = %q, %v", msg, ok)
	}
}
