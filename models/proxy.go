package models

import (
	"net"
	"strconv"
)

// Proxy описывает SOCKS5-прокси, через который бот ходит в API.
type Proxy struct {
	IP       string `json:"ip"`
	Port     int    `json:"port"`
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Addr возвращает адрес в виде host:port.
func (p Proxy) Addr() string {
	return net.JoinHostPort(p.IP, strconv.Itoa(p.Port))
}
