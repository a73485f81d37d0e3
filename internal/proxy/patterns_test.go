package proxy

import "testing"

func TestClassifyDangerous(t *testing.T) {
	m, err := NewMatcher()
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}

	cases := []string{
		"rm -rf /",
		"sudo rm -rf /var",
		"dd if=/dev/urandom of=/dev/sda",
		"mkfs -t ext4 /dev/sdb1",
		"fdisk /dev/sda",
		"find / -name x -exec rm {} \\; # rf somewhere and -rf elsewhere",
	}
	for _, c := range cases {
		if got := m.Classify(c); got != TierDangerous {
			t.Errorf("Classify(%q) = %v, want TierDangerous", c, got)
		}
	}
}

func TestClassifySensitive(t *testing.T) {
	m, err := NewMatcher()
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}

	cases := []string{
		"passwd root",
		"chmod 777 /etc/shadow",
		"chown root:root /etc/passwd",
		"iptables -F",
		"systemctl stop sshd",
	}
	for _, c := range cases {
		if got := m.Classify(c); got != TierSensitive {
			t.Errorf("Classify(%q) = %v, want TierSensitive", c, got)
		}
	}
}

func TestClassifyNone(t *testing.T) {
	m, err := NewMatcher()
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}

	cases := []string{"ls -la", "git status", "echo hello world"}
	for _, c := range cases {
		if got := m.Classify(c); got != TierNone {
			t.Errorf("Classify(%q) = %v, want TierNone", c, got)
		}
	}
}
