// Package netassoc provides the network-association capability consumed
// by conn.Manager.
//
// Two implementations cover the deployments PlantLink nodes run in:
//
//   - Prober: the operating system already manages the link (ethernet,
//     pre-configured Wi-Fi). "Associating" means verifying reachability
//     of a probe target, normally the broker address.
//   - NMCLI: the daemon joins the named Wi-Fi network itself by driving
//     NetworkManager's nmcli, the closest Linux equivalent of the
//     firmware Wi-Fi join the original sensor nodes performed.
//
// Neither implementation retries internally; retry policy belongs to
// conn.Manager.
package netassoc
